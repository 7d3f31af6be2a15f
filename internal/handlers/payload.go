package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/mobile-garage/internal/apperr"
	"github.com/ukydev/mobile-garage/internal/models"
	"gopkg.in/guregu/null.v4"
)

// Payload is a decoded JSON object whose fields are read on demand, so that
// handlers can tell absent fields from zero values.
type Payload map[string]json.RawMessage

func bindPayload(c *gin.Context) (Payload, error) {
	var p Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperr.Validation("No data provided")
		}
		return nil, apperr.Validation("Invalid JSON")
	}
	if len(p) == 0 {
		return nil, apperr.Validation("No data provided")
	}
	return p, nil
}

// Has reports whether key is present, even when null.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Payload) isNull(key string) bool {
	raw, ok := p[key]
	return !ok || string(raw) == "null"
}

// Keys returns the present keys, sorted.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Missing returns the fields that are absent, null or blank strings.
func (p Payload) Missing(fields ...string) []string {
	var missing []string
	for _, f := range fields {
		if p.isNull(f) {
			missing = append(missing, f)
			continue
		}
		var s string
		if json.Unmarshal(p[f], &s) == nil && strings.TrimSpace(s) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func invalidField(key, msg string) *apperr.Error {
	return apperr.Validation(msg).WithFields(key)
}

// String returns the trimmed string value of key.
func (p Payload) String(key string) (string, error) {
	var s string
	if err := json.Unmarshal(p[key], &s); err != nil {
		return "", invalidField(key, key+" must be a string")
	}
	return strings.TrimSpace(s), nil
}

// NonEmptyString is String that rejects blank values.
func (p Payload) NonEmptyString(key, label string) (string, error) {
	s, err := p.String(key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", invalidField(key, label+" cannot be empty")
	}
	return s, nil
}

// Int returns the value of key, which must be a JSON integer.
func (p Payload) Int(key string) (int, error) {
	var n int
	if err := json.Unmarshal(p[key], &n); err != nil {
		return 0, invalidField(key, key+" must be an integer")
	}
	return n, nil
}

// ID returns the value of key as a record id.
func (p Payload) ID(key string) (int64, error) {
	var n int64
	if err := json.Unmarshal(p[key], &n); err != nil || n <= 0 {
		return 0, invalidField(key, "Invalid "+key)
	}
	return n, nil
}

// Float returns the numeric value of key.
func (p Payload) Float(key string) (float64, error) {
	var f float64
	if err := json.Unmarshal(p[key], &f); err != nil {
		return 0, invalidField(key, key+" must be a number")
	}
	return f, nil
}

// NullID returns the id in key, invalid when the value is null.
func (p Payload) NullID(key string) (null.Int, error) {
	var n null.Int
	if err := json.Unmarshal(p[key], &n); err != nil || (n.Valid && n.Int64 <= 0) {
		return null.Int{}, invalidField(key, "Invalid "+key)
	}
	return n, nil
}

// NullFloat returns the numeric value of key, invalid when null.
func (p Payload) NullFloat(key string) (null.Float, error) {
	var f null.Float
	if err := json.Unmarshal(p[key], &f); err != nil {
		return null.Float{}, invalidField(key, key+" must be a number or null")
	}
	return f, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NullTime parses an ISO-8601 timestamp. Values without a zone are UTC.
func (p Payload) NullTime(key string) (null.Time, error) {
	if p.isNull(key) {
		return null.Time{}, nil
	}
	s, err := p.String(key)
	if err != nil {
		return null.Time{}, invalidField(key, "Invalid "+key+" format")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return null.TimeFrom(t.UTC()), nil
		}
	}
	return null.Time{}, invalidField(key, "Invalid "+key+" format")
}

// Object returns the nested object in key.
func (p Payload) Object(key string) (Payload, error) {
	var inner Payload
	if p.isNull(key) {
		return nil, nil
	}
	if err := json.Unmarshal(p[key], &inner); err != nil {
		return nil, invalidField(key, key+" must be an object")
	}
	return inner, nil
}

// Require fails with the missing field names when any of fields is absent,
// null or blank.
func (p Payload) Require(fields ...string) error {
	if missing := p.Missing(fields...); len(missing) > 0 {
		return apperr.Validation("Missing required fields").WithFields(missing...)
	}
	return nil
}

// Phone returns the phone number in key.
func (p Payload) Phone(key string) (string, error) {
	s, err := p.String(key)
	if err != nil {
		return "", err
	}
	if models.ValidatePhone(s) != nil {
		return "", invalidField(key, "Invalid phone number format")
	}
	return s, nil
}

// Email returns the normalised email address in key.
func (p Payload) Email(key string) (string, error) {
	s, err := p.String(key)
	if err != nil {
		return "", err
	}
	email := models.NormalizeEmail(s)
	if models.ValidateEmail(email) != nil {
		return "", invalidField(key, "Invalid email format")
	}
	return email, nil
}

// Password returns the raw password in key. Surrounding spaces are kept.
func (p Payload) Password(key string) (string, error) {
	var s string
	if err := json.Unmarshal(p[key], &s); err != nil {
		return "", invalidField(key, key+" must be a string")
	}
	if err := models.ValidatePassword(s); err != nil {
		return "", invalidField(key, "Password must be at least 6 characters long")
	}
	return s, nil
}
