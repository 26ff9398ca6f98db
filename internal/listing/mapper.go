// Package listing turns the two listing sheets into one Property sequence
// and decides which listings accept viewing requests.
package listing

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
	"github.com/welldanyogia/estate-intake-backend/internal/models"
	"github.com/welldanyogia/estate-intake-backend/internal/sheets"
)

// ColumnLayout is the positional column mapping of one listing sheet.
// There is no header matching: reordering the sheet's columns breaks it.
type ColumnLayout struct {
	Range   string
	No      int
	Address int
	Type    int
	Price   int
	Naiken  int
}

// SaleLayout returns the layout of the direct-sale sheet (販売案件)
func SaleLayout(rng string) ColumnLayout {
	return ColumnLayout{Range: rng, No: 1, Address: 2, Type: 3, Price: 4, Naiken: 11}
}

// BrokerLayout returns the layout of the brokered sheet (仲介案件)
func BrokerLayout(rng string) ColumnLayout {
	return ColumnLayout{Range: rng, No: 0, Address: 1, Price: 2, Type: 3, Naiken: 10}
}

// MapRows maps raw rows to properties in sheet order, dropping rows whose
// number is empty or repeats the header.
func MapRows(layout ColumnLayout, rows [][]interface{}) []models.Property {
	props := make([]models.Property, 0, len(rows))
	for _, row := range rows {
		naiken := cell(row, layout.Naiken)
		p := models.Property{
			No:           cell(row, layout.No),
			Address:      cell(row, layout.Address),
			Type:         cell(row, layout.Type),
			Price:        cell(row, layout.Price),
			Naiken:       naiken,
			NaikenStatus: models.ParseViewingStatus(naiken),
		}
		if !p.Valid() {
			continue
		}
		props = append(props, p)
	}
	return props
}

// cell renders row[i] as a string; missing trailing cells are empty
func cell(row []interface{}, i int) string {
	if i < 0 || i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// ListingStore provides the full listing sequence
type ListingStore interface {
	Fetch(ctx context.Context) ([]models.Property, error)
}

// SheetListingStore reads listings from the sale and broker sheets
type SheetListingStore struct {
	reader        sheets.Reader
	spreadsheetID string
	layouts       []ColumnLayout
}

// NewSheetListingStore creates a store reading the given layouts in order
func NewSheetListingStore(reader sheets.Reader, spreadsheetID string, layouts ...ColumnLayout) *SheetListingStore {
	return &SheetListingStore{
		reader:        reader,
		spreadsheetID: spreadsheetID,
		layouts:       layouts,
	}
}

// Fetch reads every source and concatenates them, sale first. The same
// number may appear in both sheets; both rows are kept. Any failed read
// fails the whole fetch.
func (s *SheetListingStore) Fetch(ctx context.Context) ([]models.Property, error) {
	var all []models.Property
	for _, layout := range s.layouts {
		rows, err := s.reader.Values(ctx, s.spreadsheetID, layout.Range)
		if err != nil {
			return nil, apperrors.Upstream("read "+layout.Range, err)
		}
		all = append(all, MapRows(layout, rows)...)
	}
	if all == nil {
		all = []models.Property{}
	}
	return all, nil
}
