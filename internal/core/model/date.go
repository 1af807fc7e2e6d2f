package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the layout the admin API emits for dates and timestamps.
const DateLayout = "2006-01-02T15:04:05"

var dateLayouts = []string{time.RFC3339Nano, DateLayout, "2006-01-02"}

// Date is a calendar date or timestamp as exchanged with the admin API.
// null and "" decode to the zero value and the zero value encodes as null.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date { return Date{Time: t} }

// ParseDate accepts RFC 3339, DateLayout and plain yyyy-mm-dd.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("date %q: unrecognized format", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// String renders the date part only; empty for the zero value.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}
