package models

// FormKind identifies one of the three submission ledgers
type FormKind string

const (
	FormOffer   FormKind = "kaitsuke"
	FormViewing FormKind = "naiken"
	FormNDA     FormKind = "ca"
)

// PropertyRef is the listing a submission refers to, as echoed by the client
type PropertyRef struct {
	No      string
	Address string
	Type    string
	Price   string
}

// OfferRecord is one row of the purchase-offer ledger (columns C:S)
type OfferRecord struct {
	Timestamp   string
	LastName    string
	FirstName   string
	CompanyName string
	Email       string
	Phone       string
	Address     string
	Media       string
	AgentName   string
	OfferPrice  string
	Deposit     string
	Loan        string
	Conditions  string
	Property    PropertyRef
}

// Row returns the fixed column order written to the sheet
func (r OfferRecord) Row() []interface{} {
	return []interface{}{
		r.Timestamp,
		r.LastName,
		r.FirstName,
		r.CompanyName,
		r.Email,
		r.Phone,
		r.Address,
		r.Media,
		r.AgentName,
		r.OfferPrice,
		r.Deposit,
		r.Loan,
		r.Conditions,
		r.Property.No,
		r.Property.Address,
		r.Property.Type,
		r.Property.Price,
	}
}

// FullName joins last and first name the way the office writes them
func (r OfferRecord) FullName() string {
	return joinName(r.LastName, r.FirstName)
}

// ViewingRecord is one row of the viewing-request ledger (columns C:P)
type ViewingRecord struct {
	Timestamp      string
	Name           string
	Phone          string
	Email          string
	Date1          string
	Time1          string
	Date2          string
	Time2          string
	AttachmentName string
	Privacy        string
	Property       PropertyRef
}

// Row returns the fixed column order written to the sheet
func (r ViewingRecord) Row() []interface{} {
	return []interface{}{
		r.Timestamp,
		r.Name,
		r.Phone,
		r.Email,
		r.Date1,
		r.Time1,
		r.Date2,
		r.Time2,
		r.AttachmentName,
		r.Privacy,
		r.Property.No,
		r.Property.Address,
		r.Property.Type,
		r.Property.Price,
	}
}

// NDARecord is one row of the confidentiality-agreement ledger (columns C:K)
type NDARecord struct {
	Timestamp   string
	LastName    string
	FirstName   string
	CompanyName string
	Email       string
	Phone       string
	Address     string
	Property    PropertyRef
}

// Row returns the fixed column order written to the sheet
func (r NDARecord) Row() []interface{} {
	return []interface{}{
		r.Timestamp,
		r.LastName,
		r.FirstName,
		r.CompanyName,
		r.Email,
		r.Phone,
		r.Address,
		r.Property.No,
		r.Property.Address,
	}
}

// FullName joins last and first name the way the office writes them
func (r NDARecord) FullName() string {
	return joinName(r.LastName, r.FirstName)
}

func joinName(last, first string) string {
	switch {
	case last == "":
		return first
	case first == "":
		return last
	default:
		return last + " " + first
	}
}
