// Package sheets wraps the Google Sheets v4 values API behind the two
// operations the gateway needs: reading a range and appending one row.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	valueInputUserEntered = "USER_ENTERED"
	insertDataInsertRows  = "INSERT_ROWS"
)

// Reader reads the raw cell grid of a range
type Reader interface {
	Values(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
}

// Appender appends exactly one row after the last row of a range
type Appender interface {
	Append(ctx context.Context, spreadsheetID, rng string, row []interface{}) error
}

// Client implements Reader and Appender on top of the Sheets API
type Client struct {
	svc *sheetsapi.Service
}

// New creates a Client. Options are passed through to the Sheets service,
// which is how tests point it at a local server.
func New(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewFromCredentialsFile creates a Client authenticated with a service account key file
func NewFromCredentialsFile(ctx context.Context, path string) (*Client, error) {
	return New(ctx,
		option.WithCredentialsFile(path),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
}

// Values returns the cells of rng. Trailing empty rows and cells are omitted
// by the API, so rows may be shorter than the range is wide.
func (c *Client) Values(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rng, err)
	}
	return resp.Values, nil
}

// Append writes row as a new row in rng
func (c *Client) Append(ctx context.Context, spreadsheetID, rng string, row []interface{}) error {
	vr := &sheetsapi.ValueRange{
		Values: [][]interface{}{row},
	}
	_, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, rng, vr).
		ValueInputOption(valueInputUserEntered).
		InsertDataOption(insertDataInsertRows).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}
