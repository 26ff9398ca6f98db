// Package form turns submitted request bodies into ledger records.
package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/welldanyogia/estate-intake-backend/internal/errors"
)

// Payload is a multi-valued view of a submitted body, keyed by field name.
// JSON bodies and form posts both end up here so the record mapping is shared.
type Payload map[string][]string

// PayloadFromJSON decodes a JSON object body. Numbers keep their literal text,
// null fields are treated as absent and a nested "property" object is
// flattened into propertyNo, propertyAddress and so on. An empty or null
// body fails; {} yields an empty, non-nil Payload.
func PayloadFromJSON(body []byte) (Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apperrors.InvalidSubmission("フォームデータがありません")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, apperrors.NewAppError(
			fmt.Errorf("%w: %v", apperrors.ErrInvalidSubmission, err),
			"フォームデータを読み取れませんでした",
			apperrors.CodeInvalidSubmission,
		)
	}
	if raw == nil {
		return nil, apperrors.InvalidSubmission("フォームデータがありません")
	}

	p := make(Payload, len(raw))
	for key, v := range raw {
		if nested, ok := v.(map[string]interface{}); ok && key == "property" {
			for sub, sv := range nested {
				p.addJSON("property"+upperFirst(sub), sv)
			}
			continue
		}
		p.addJSON(key, v)
	}
	return p, nil
}

// PayloadFromForm copies multipart or URL-encoded form values. A post with no
// fields at all yields nil, the same as a missing body.
func PayloadFromForm(values map[string][]string) Payload {
	if len(values) == 0 {
		return nil
	}
	p := make(Payload, len(values))
	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		p[key] = append([]string(nil), vs...)
	}
	return p
}

func (p Payload) addJSON(key string, v interface{}) {
	switch val := v.(type) {
	case nil:
		return
	case []interface{}:
		vals := make([]string, 0, len(val))
		for _, elem := range val {
			if elem == nil {
				continue
			}
			vals = append(vals, jsonScalar(elem))
		}
		p[key] = vals
	default:
		p[key] = []string{jsonScalar(val)}
	}
}

func jsonScalar(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Has reports whether key was submitted at all
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Get returns the scalar value of key, or "" when absent
func (p Payload) Get(key string) string {
	return NormalizeScalar(p[key])
}

// List returns the list value of key joined with ", "
func (p Payload) List(key string) string {
	return NormalizeList(p[key])
}

// Keys returns the submitted field names in sorted order
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeScalar returns the first submitted value, or "" when absent.
func NormalizeScalar(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// NormalizeList joins a list-or-scalar field with ", ". A lone scalar is
// returned unchanged, so "a, b" and ["a", "b"] normalize to the same text.
func NormalizeList(v []string) string {
	switch len(v) {
	case 0:
		return ""
	case 1:
		return v[0]
	}
	parts := make([]string, 0, len(v))
	for _, s := range v {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
