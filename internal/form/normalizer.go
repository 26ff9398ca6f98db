package form

import (
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
	"github.com/welldanyogia/estate-intake-backend/internal/models"
	"github.com/welldanyogia/estate-intake-backend/internal/validator"
)

// TimestampLayout is the ledger's timestamp column format
const TimestampLayout = "2006/01/02 15:04:05"

// maxConditions is the number of condition checkboxes on the offer form
const maxConditions = 5

var tokyo = loadTokyo()

func loadTokyo() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// Clock supplies the submission time
type Clock func() time.Time

// TokyoTimestamp formats t in Japan time regardless of the process time zone.
func TokyoTimestamp(t time.Time) string {
	return t.In(tokyo).Format(TimestampLayout)
}

// Normalizer maps payloads onto the three ledger records.
type Normalizer struct {
	now Clock
}

// NewNormalizer creates a Normalizer. A nil clock uses time.Now.
func NewNormalizer(clock Clock) *Normalizer {
	if clock == nil {
		clock = time.Now
	}
	return &Normalizer{now: clock}
}

// Offer builds a purchase-offer record.
func (n *Normalizer) Offer(p Payload) (*models.OfferRecord, error) {
	if err := requirePayload(p); err != nil {
		return nil, err
	}

	loan := p.Get("loan")
	if !p.Has("loan") {
		loan = p.Get("loanContingency")
	}

	return &models.OfferRecord{
		Timestamp:   n.timestamp(),
		LastName:    clean(p.Get("lastName")),
		FirstName:   clean(p.Get("firstName")),
		CompanyName: clean(p.Get("companyName")),
		Email:       clean(p.Get("email")),
		Phone:       clean(p.Get("phone")),
		Address:     clean(p.Get("address")),
		Media:       clean(p.Get("media")),
		AgentName:   clean(p.Get("agentName")),
		OfferPrice:  clean(p.Get("offerPrice")),
		Deposit:     clean(p.Get("deposit")),
		Loan:        clean(loan),
		Conditions:  validator.SanitizeText(conditions(p), 0),
		Property:    propertyRef(p),
	}, nil
}

// Viewing builds a viewing-request record. attachmentName is the decoded
// display name of the uploaded file, or "" when none was sent.
func (n *Normalizer) Viewing(p Payload, attachmentName string) (*models.ViewingRecord, error) {
	if err := requirePayload(p); err != nil {
		return nil, err
	}

	name := p.Get("name")
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSpace(p.Get("lastName") + " " + p.Get("firstName"))
	}

	return &models.ViewingRecord{
		Timestamp:      n.timestamp(),
		Name:           clean(name),
		Phone:          clean(p.Get("phone")),
		Email:          clean(p.Get("email")),
		Date1:          clean(p.Get("date1")),
		Time1:          clean(p.Get("time1")),
		Date2:          clean(p.Get("date2")),
		Time2:          clean(p.Get("time2")),
		AttachmentName: clean(attachmentName),
		Privacy:        clean(p.Get("privacy")),
		Property:       propertyRef(p),
	}, nil
}

// NDA builds a confidentiality-agreement record.
func (n *Normalizer) NDA(p Payload) (*models.NDARecord, error) {
	if err := requirePayload(p); err != nil {
		return nil, err
	}

	return &models.NDARecord{
		Timestamp:   n.timestamp(),
		LastName:    clean(p.Get("lastName")),
		FirstName:   clean(p.Get("firstName")),
		CompanyName: clean(p.Get("companyName")),
		Email:       clean(p.Get("email")),
		Phone:       clean(p.Get("phone")),
		Address:     clean(p.Get("address")),
		Property: models.PropertyRef{
			No:      clean(p.Get("propertyNo")),
			Address: clean(p.Get("propertyAddress")),
		},
	}, nil
}

func (n *Normalizer) timestamp() string {
	return TokyoTimestamp(n.now())
}

// requirePayload fails only when no body was submitted. An empty object is a
// submission whose fields are all blank and is recorded as such.
func requirePayload(p Payload) error {
	if p == nil {
		return apperrors.InvalidSubmission("フォームデータがありません")
	}
	return nil
}

// conditions prefers the "conditions" field and falls back to the
// condition1..condition5 checkboxes.
func conditions(p Payload) string {
	if p.Has("conditions") {
		return p.List("conditions")
	}
	var picked []string
	for i := 1; i <= maxConditions; i++ {
		if v := p.Get("condition" + strconv.Itoa(i)); strings.TrimSpace(v) != "" {
			picked = append(picked, v)
		}
	}
	if len(picked) == 1 {
		return strings.TrimSpace(picked[0])
	}
	return NormalizeList(picked)
}

func propertyRef(p Payload) models.PropertyRef {
	return models.PropertyRef{
		No:      clean(p.Get("propertyNo")),
		Address: clean(p.Get("propertyAddress")),
		Type:    clean(p.Get("propertyType")),
		Price:   clean(p.Get("propertyPrice")),
	}
}

func clean(s string) string {
	return validator.SanitizeString(s, 0)
}
