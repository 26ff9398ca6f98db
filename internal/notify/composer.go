package notify

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/welldanyogia/estate-intake-backend/internal/models"
	"github.com/welldanyogia/estate-intake-backend/internal/validator"
)

// Staff is where internal notifications go
type Staff struct {
	To string
	CC string
}

// Composer renders the three message kinds
type Composer struct {
	staff Staff
	tmpl  *template.Template
}

const (
	tmplOfferSubject   = "offer_subject"
	tmplOfferBody      = "offer_body"
	tmplViewingSubject = "viewing_subject"
	tmplViewingBody    = "viewing_body"
	tmplNDASubject     = "nda_subject"
	tmplNDABody        = "nda_body"
)

var templates = template.Must(template.New("notify").Parse(`
{{- define "offer_subject"}}【買付申込】お申込みを受け付けました{{with .Property.No}}（物件No.{{.}}）{{end}}{{end}}

{{- define "offer_body"}}{{.FullName}} 様

このたびは買付申込をいただき、誠にありがとうございます。
以下の内容でお申込みを受け付けました。担当者より追ってご連絡いたします。

■ 物件情報
物件No.：{{.Property.No}}
所在地：{{.Property.Address}}
種別：{{.Property.Type}}
価格：{{.Property.Price}}

■ お申込み内容
会社名：{{.CompanyName}}
電話番号：{{.Phone}}
ご住所：{{.Address}}
媒体：{{.Media}}
担当者名：{{.AgentName}}
購入希望価格：{{.OfferPrice}}
手付金：{{.Deposit}}
ローン特約：{{.Loan}}
条件：{{.Conditions}}

受付日時：{{.Timestamp}}

※本メールは送信専用アドレスから送信しています。
{{end}}

{{- define "viewing_subject"}}【内見受付】{{.Name}} 様{{with .Property.No}}（物件No.{{.}}）{{end}}{{end}}

{{- define "viewing_body"}}内見の申込がありました。

■ 申込者
お名前：{{.Name}}
電話番号：{{.Phone}}
メールアドレス：{{.Email}}

■ 希望日時
第1希望：{{.Date1}} {{.Time1}}
第2希望：{{.Date2}} {{.Time2}}

■ 物件情報
物件No.：{{.Property.No}}
所在地：{{.Property.Address}}
種別：{{.Property.Type}}
価格：{{.Property.Price}}

本人確認書類：{{if .AttachmentName}}{{.AttachmentName}}（添付）{{else}}なし{{end}}
個人情報の取扱い：{{.Privacy}}
受付日時：{{.Timestamp}}
{{end}}

{{- define "nda_subject"}}【秘密保持契約】ご同意を受け付けました{{with .Property.No}}（物件No.{{.}}）{{end}}{{end}}

{{- define "nda_body"}}{{.FullName}} 様

秘密保持契約（CA）へのご同意をいただき、ありがとうございます。
以下の内容で受け付けました。物件資料は担当者よりお送りいたします。

物件No.：{{.Property.No}}
所在地：{{.Property.Address}}

会社名：{{.CompanyName}}
電話番号：{{.Phone}}
ご住所：{{.Address}}

受付日時：{{.Timestamp}}

※本メールは送信専用アドレスから送信しています。
{{end}}
`))

// NewComposer creates a Composer addressing internal mail to staff
func NewComposer(staff Staff) *Composer {
	return &Composer{staff: staff, tmpl: templates}
}

// OfferAcknowledgment is sent to the applicant, copying staff
func (c *Composer) OfferAcknowledgment(rec *models.OfferRecord) (Message, error) {
	to, err := applicant(rec.Email)
	if err != nil {
		return Message{}, err
	}
	return c.render(tmplOfferSubject, tmplOfferBody, rec, Message{To: to, CC: c.staff.To})
}

// ViewingNotification is sent to staff with the uploaded document attached
func (c *Composer) ViewingNotification(rec *models.ViewingRecord, att *Attachment) (Message, error) {
	if c.staff.To == "" {
		return Message{}, fmt.Errorf("viewing notification: %w", ErrNoRecipient)
	}
	msg, err := c.render(tmplViewingSubject, tmplViewingBody, rec, Message{To: c.staff.To, CC: c.staff.CC})
	if err != nil {
		return Message{}, err
	}
	msg.Attachment = att
	return msg, nil
}

// NDAConfirmation is sent to the applicant, copying staff
func (c *Composer) NDAConfirmation(rec *models.NDARecord) (Message, error) {
	to, err := applicant(rec.Email)
	if err != nil {
		return Message{}, err
	}
	return c.render(tmplNDASubject, tmplNDABody, rec, Message{To: to, CC: c.staff.To})
}

func (c *Composer) render(subjectTmpl, bodyTmpl string, data any, msg Message) (Message, error) {
	var subject, body strings.Builder
	if err := c.tmpl.ExecuteTemplate(&subject, subjectTmpl, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", subjectTmpl, err)
	}
	if err := c.tmpl.ExecuteTemplate(&body, bodyTmpl, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", bodyTmpl, err)
	}
	msg.Subject = subject.String()
	msg.Body = body.String()
	return msg, nil
}

func applicant(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validator.ValidateEmail(email); err != nil {
		return "", fmt.Errorf("applicant address %q: %w: %w", email, ErrNoRecipient, err)
	}
	return email, nil
}
