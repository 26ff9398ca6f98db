package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
)

var fixedNow = time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestTokyoTimestamp(t *testing.T) {
	assert.Equal(t, "2024/01/02 01:00:00", TokyoTimestamp(fixedNow))

	// the input zone does not matter
	ny := time.FixedZone("EST", -5*60*60)
	assert.Equal(t, "2024/01/02 01:00:00", TokyoTimestamp(fixedNow.In(ny)))
}

func TestNewNormalizer_DefaultClock(t *testing.T) {
	n := NewNormalizer(nil)
	rec, err := n.NDA(Payload{"lastName": {"山田"}})
	require.NoError(t, err)

	stamp, err := time.ParseInLocation(TimestampLayout, rec.Timestamp, tokyo)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), stamp, time.Minute)
}

func TestNormalizer_Offer(t *testing.T) {
	n := NewNormalizer(fixedClock)
	p := Payload{
		"lastName":        {"山田"},
		"firstName":       {"太郎"},
		"email":           {"taro@example.com"},
		"offerPrice":      {"35000000"},
		"loanContingency": {"あり"},
		"conditions":      {"現況渡し", "引渡し猶予"},
		"propertyNo":      {"S-001"},
		"propertyAddress": {"東京都港区"},
		"propertyType":    {"戸建"},
		"propertyPrice":   {"4,980万円"},
	}

	rec, err := n.Offer(p)
	require.NoError(t, err)

	row := rec.Row()
	require.Len(t, row, 17)
	assert.Equal(t, "2024/01/02 01:00:00", row[0])
	assert.Equal(t, "山田", row[1])
	assert.Equal(t, "太郎", row[2])
	assert.Equal(t, "", row[3], "missing optional field is empty")
	assert.Equal(t, "35000000", row[9])
	assert.Equal(t, "あり", row[11])
	assert.Equal(t, "現況渡し, 引渡し猶予", row[12])
	assert.Equal(t, "S-001", row[13])
	assert.Equal(t, "4,980万円", row[16])
}

func TestNormalizer_Offer_LoanWinsOverAlias(t *testing.T) {
	n := NewNormalizer(fixedClock)
	rec, err := n.Offer(Payload{"loan": {"なし"}, "loanContingency": {"あり"}})
	require.NoError(t, err)
	assert.Equal(t, "なし", rec.Loan)
}

func TestNormalizer_Offer_ConditionCheckboxes(t *testing.T) {
	n := NewNormalizer(fixedClock)

	rec, err := n.Offer(Payload{"condition1": {"現況渡し"}, "condition3": {"引渡し猶予"}, "condition4": {""}})
	require.NoError(t, err)
	assert.Equal(t, "現況渡し, 引渡し猶予", rec.Conditions)

	rec, err = n.Offer(Payload{"condition2": {"契約不適合責任免責"}})
	require.NoError(t, err)
	assert.Equal(t, "契約不適合責任免責", rec.Conditions)
}

func TestNormalizer_Offer_ConditionsScalarAndListAgree(t *testing.T) {
	n := NewNormalizer(fixedClock)

	fromList, err := n.Offer(Payload{"conditions": {"a", "b"}})
	require.NoError(t, err)
	fromScalar, err := n.Offer(Payload{"conditions": {"a, b"}})
	require.NoError(t, err)

	assert.Equal(t, fromList.Conditions, fromScalar.Conditions)
}

func TestNormalizer_StripsControlCharacters(t *testing.T) {
	n := NewNormalizer(fixedClock)
	rec, err := n.Offer(Payload{
		"lastName":   {"山田\x00"},
		"conditions": {"一行目\r\n二行目"},
	})
	require.NoError(t, err)

	assert.Equal(t, "山田", rec.LastName)
	assert.Equal(t, "一行目\n二行目", rec.Conditions)
}

func TestNormalizer_Viewing(t *testing.T) {
	n := NewNormalizer(fixedClock)
	p := Payload{
		"lastName":   {"佐藤"},
		"firstName":  {"花子"},
		"phone":      {"090-0000-0000"},
		"date1":      {"2024-01-10"},
		"time1":      {"10:00"},
		"privacy":    {"on"},
		"propertyNo": {"B-7"},
	}

	rec, err := n.Viewing(p, "免許証.png")
	require.NoError(t, err)

	row := rec.Row()
	require.Len(t, row, 14)
	assert.Equal(t, "2024/01/02 01:00:00", row[0])
	assert.Equal(t, "佐藤 花子", row[1])
	assert.Equal(t, "", row[7], "time2 absent")
	assert.Equal(t, "免許証.png", row[8])
	assert.Equal(t, "on", row[9])
	assert.Equal(t, "B-7", row[10])
}

func TestNormalizer_Viewing_NameFieldWins(t *testing.T) {
	n := NewNormalizer(fixedClock)

	rec, err := n.Viewing(Payload{"name": {"山田 太郎"}, "lastName": {"佐藤"}}, "")
	require.NoError(t, err)
	assert.Equal(t, "山田 太郎", rec.Name)

	rec, err = n.Viewing(Payload{"firstName": {"花子"}}, "")
	require.NoError(t, err)
	assert.Equal(t, "花子", rec.Name)
	assert.Equal(t, "", rec.AttachmentName)
}

func TestNormalizer_NDA(t *testing.T) {
	n := NewNormalizer(fixedClock)
	p := Payload{
		"lastName":        {"山田"},
		"firstName":       {"太郎"},
		"companyName":     {"山田不動産"},
		"propertyNo":      {"S-001"},
		"propertyAddress": {"東京都港区"},
		"propertyType":    {"戸建"},
	}

	rec, err := n.NDA(p)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{
		"2024/01/02 01:00:00", "山田", "太郎", "山田不動産", "", "", "", "S-001", "東京都港区",
	}, rec.Row())
}

func TestNormalizer_EmptyPayload(t *testing.T) {
	n := NewNormalizer(fixedClock)

	_, err := n.Offer(nil)
	assert.True(t, apperrors.IsInvalidSubmission(err))

	_, err = n.Viewing(nil, "a.png")
	assert.True(t, apperrors.IsInvalidSubmission(err))

	_, err = n.NDA(nil)
	assert.True(t, apperrors.IsInvalidSubmission(err))
}

func TestNormalizer_EmptyObjectRecordsBlankRow(t *testing.T) {
	n := NewNormalizer(fixedClock)

	rec, err := n.NDA(Payload{})
	require.NoError(t, err)

	assert.Equal(t, []interface{}{
		"2024/01/02 01:00:00", "", "", "", "", "", "", "", "",
	}, rec.Row())
}
