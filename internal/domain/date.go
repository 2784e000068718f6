package domain

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day in request and response bodies. It accepts either
// YYYY-MM-DD or an RFC 3339 timestamp and holds midnight UTC.
type Date struct {
	time.Time
}

// NewDate truncates t to its UTC day.
func NewDate(t time.Time) Date {
	return Date{Time: StartOfDay(t)}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("date must be a string, got %s", b)
	}
	s := string(b[1 : len(b)-1])
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
		}
	}
	*d = NewDate(t)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}
