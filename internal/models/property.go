package models

import "strings"

// HeaderNo is the header cell of the listing number column; rows echoing it are not listings
const HeaderNo = "案件管理No"

// Property is one listing row as exposed by /fetch and /fetch_naiken
type Property struct {
	No           string        `json:"no"`
	Address      string        `json:"address"`
	Type         string        `json:"type"`
	Price        string        `json:"price"`
	Naiken       string        `json:"naiken"`
	NaikenStatus ViewingStatus `json:"naikenStatus"`
}

// Valid reports whether the row carries a real listing number
func (p Property) Valid() bool {
	no := strings.TrimSpace(p.No)
	return no != "" && no != HeaderNo
}
