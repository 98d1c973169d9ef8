package repository

import (
	"fmt"
	"strings"
	"time"
)

// Layouts the ledger drivers hand back for DATETIME values and aggregates over them.
var ledgerTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999 -0700 MST", // time.Time.String, the sqlite driver's default
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ledgerTime scans a nullable timestamp whether the driver returns time.Time or text.
type ledgerTime struct {
	Time  time.Time
	Valid bool
}

func (t *ledgerTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into ledger time", src)
	}
}

func (t *ledgerTime) parse(s string) error {
	// Monotonic clock reading appended by time.Time.String
	if i := strings.Index(s, " m="); i >= 0 {
		s = s[:i]
	}
	for _, layout := range ledgerTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("unrecognized ledger time %q", s)
}
