package form

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
)

func TestPayloadFromJSON_ScalarKinds(t *testing.T) {
	p, err := PayloadFromJSON([]byte(`{
		"lastName": "山田",
		"offerPrice": 35000000,
		"deposit": 1.5e6,
		"privacy": true,
		"media": null,
		"conditions": ["現況渡し", "", "引渡し猶予"]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "山田", p.Get("lastName"))
	assert.Equal(t, "35000000", p.Get("offerPrice"))
	assert.Equal(t, "1.5e6", p.Get("deposit"))
	assert.Equal(t, "true", p.Get("privacy"))
	assert.False(t, p.Has("media"))
	assert.Equal(t, "現況渡し, 引渡し猶予", p.List("conditions"))
}

func TestPayloadFromJSON_FlattensPropertyObject(t *testing.T) {
	p, err := PayloadFromJSON([]byte(`{"email":"a@example.com","property":{"no":"S-001","address":"東京都港区","type":"戸建","price":"4,980万円"}}`))
	require.NoError(t, err)

	assert.Equal(t, "S-001", p.Get("propertyNo"))
	assert.Equal(t, "東京都港区", p.Get("propertyAddress"))
	assert.Equal(t, "戸建", p.Get("propertyType"))
	assert.Equal(t, "4,980万円", p.Get("propertyPrice"))
	assert.False(t, p.Has("property"))
}

func TestPayloadFromJSON_NestedObjectIsStringified(t *testing.T) {
	p, err := PayloadFromJSON([]byte(`{"imgFile":{"name":"a.png"}}`))
	require.NoError(t, err)

	assert.Equal(t, `{"name":"a.png"}`, p.Get("imgFile"))
}

func TestPayloadFromJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"whitespace body", "  \n"},
		{"null", "null"},
		{"array", `["a"]`},
		{"malformed", `{"lastName":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PayloadFromJSON([]byte(tt.body))
			assert.Nil(t, p)
			assert.True(t, apperrors.IsInvalidSubmission(err))
		})
	}
}

func TestPayloadFromJSON_EmptyObjectIsAccepted(t *testing.T) {
	for _, body := range []string{`{}`, `{"companyName":null}`} {
		p, err := PayloadFromJSON([]byte(body))
		require.NoError(t, err, body)
		assert.NotNil(t, p, body)
		assert.Empty(t, p.Keys(), body)
	}
}

func TestPayloadFromForm_NoFieldsIsAbsent(t *testing.T) {
	assert.Nil(t, PayloadFromForm(nil))
	assert.Nil(t, PayloadFromForm(url.Values{}))
}

func TestPayloadFromForm_CopiesValues(t *testing.T) {
	values := url.Values{
		"name":       {"佐藤 花子"},
		"conditions": {"a", "b"},
		"empty":      {},
	}

	p := PayloadFromForm(values)
	values["name"][0] = "changed"

	assert.Equal(t, "佐藤 花子", p.Get("name"))
	assert.Equal(t, "a, b", p.List("conditions"))
	assert.False(t, p.Has("empty"))
	assert.Equal(t, []string{"conditions", "name"}, p.Keys())
}

func TestNormalizeScalar(t *testing.T) {
	assert.Equal(t, "", NormalizeScalar(nil))
	assert.Equal(t, "x", NormalizeScalar([]string{"x", "y"}))
}

func TestNormalizeList_Idempotent(t *testing.T) {
	fromList := NormalizeList([]string{"a", "b"})
	fromScalar := NormalizeList([]string{"a, b"})

	assert.Equal(t, "a, b", fromList)
	assert.Equal(t, fromList, fromScalar)
	assert.Equal(t, fromList, NormalizeList([]string{fromList}))
	assert.Equal(t, "", NormalizeList(nil))
	assert.Equal(t, "a", NormalizeList([]string{" ", "a", ""}))
}
