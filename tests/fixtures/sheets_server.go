package fixtures

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/estate-intake-backend/internal/sheets"
	"google.golang.org/api/option"
)

// SheetsServer is an in-process stand-in for the Sheets v4 values API.
// Ranges are keyed by "<spreadsheetID>/<range>".
type SheetsServer struct {
	*httptest.Server

	mu         sync.Mutex
	values     map[string][][]interface{}
	appended   map[string][][]interface{}
	failGet    map[string]bool
	failAppend bool
	gets       []string
}

// NewSheetsServer starts a SheetsServer that is closed when the test ends
func NewSheetsServer(t testing.TB) *SheetsServer {
	s := &SheetsServer{
		values:   make(map[string][][]interface{}),
		appended: make(map[string][][]interface{}),
		failGet:  make(map[string]bool),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Server.Close)
	return s
}

// Client returns a sheets.Client talking to this server
func (s *SheetsServer) Client(t testing.TB) *sheets.Client {
	c, err := sheets.New(context.Background(),
		option.WithEndpoint(s.URL+"/"),
		option.WithHTTPClient(s.Server.Client()),
	)
	require.NoError(t, err)
	return c
}

// SetValues seeds the rows returned for a range
func (s *SheetsServer) SetValues(spreadsheetID, rng string, rows [][]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[spreadsheetID+"/"+rng] = rows
}

// FailGet makes reads of a range return an error
func (s *SheetsServer) FailGet(spreadsheetID, rng string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet[spreadsheetID+"/"+rng] = true
}

// FailAppend makes every append return an error
func (s *SheetsServer) FailAppend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAppend = true
}

// Appended returns the rows appended to a range so far
func (s *SheetsServer) Appended(spreadsheetID, rng string) [][]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appended[spreadsheetID+"/"+rng]
}

// Gets returns the ranges read, in order
func (s *SheetsServer) Gets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.gets...)
}

func (s *SheetsServer) handle(w http.ResponseWriter, r *http.Request) {
	rest, ok := strings.CutPrefix(r.URL.Path, "/v4/spreadsheets/")
	if !ok {
		writeAPIError(w, http.StatusNotFound, "unknown path")
		return
	}
	id, rng, ok := strings.Cut(rest, "/values/")
	if !ok {
		writeAPIError(w, http.StatusNotFound, "unknown path")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == http.MethodGet:
		key := id + "/" + rng
		s.gets = append(s.gets, rng)
		if s.failGet[key] {
			writeAPIError(w, http.StatusForbidden, "The caller does not have permission")
			return
		}
		writeJSON(w, map[string]interface{}{
			"range":          rng,
			"majorDimension": "ROWS",
			"values":         s.values[key],
		})
	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":append"):
		rng = strings.TrimSuffix(rng, ":append")
		if s.failAppend {
			writeAPIError(w, http.StatusForbidden, "The caller does not have permission")
			return
		}
		if got := r.URL.Query().Get("valueInputOption"); got != "USER_ENTERED" {
			writeAPIError(w, http.StatusBadRequest, "unexpected valueInputOption "+got)
			return
		}
		var body struct {
			Values [][]interface{} `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeAPIError(w, http.StatusBadRequest, err.Error())
			return
		}
		key := id + "/" + rng
		s.appended[key] = append(s.appended[key], body.Values...)
		writeJSON(w, map[string]interface{}{"spreadsheetId": id, "tableRange": rng})
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": msg,
		},
	})
}
