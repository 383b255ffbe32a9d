package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used in storage and JSON.
const DateLayout = "2006-01-02"

// TimestampLayout is a fixed-width UTC layout so stored timestamps sort lexically.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Date is a calendar date with no time component
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC calendar date.
func Today() Date {
	return NewDate(time.Now().UTC())
}

// ParseDate accepts a bare date or any value starting with one (RFC 3339 timestamps included).
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return NewDate(t.UTC()), nil
	}
	if len(value) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, value[:len(DateLayout)]); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: invalid date %q", ErrValidation, value)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("models: cannot scan type %T into Date", src)
	}
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Location is a gazetteer-canonical state and district; either may be empty
type Location struct {
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
}

// IsEmpty reports whether neither field is set.
func (l Location) IsEmpty() bool {
	return l.State == "" && l.District == ""
}

// Scan implements sql.Scanner
func (l *Location) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = Location{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("models: cannot scan type %T into Location", src)
	}
	var out Location
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// Value implements driver.Valuer. A nil *Location is stored as NULL.
func (l Location) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// StringSlice is a []string stored as a JSON array in jsonb/text columns.
type StringSlice []string

// Scan implements sql.Scanner
func (s *StringSlice) Scan(src interface{}) error {
	if s == nil {
		return fmt.Errorf("models: Scan on nil *StringSlice")
	}
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		var out []string
		if err := json.Unmarshal(v, &out); err != nil {
			return err
		}
		*s = out
		return nil
	case string:
		return s.Scan([]byte(v))
	default:
		return fmt.Errorf("models: cannot scan type %T into StringSlice", src)
	}
}

// Value implements driver.Valuer
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
