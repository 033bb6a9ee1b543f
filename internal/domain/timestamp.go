package domain

import (
	"database/sql/driver" // Valuer interface
	"encoding/json"       // JSON encoding
	"fmt"                 // Error formatting
	"time"                // Time parsing
)

// sqliteLayout matches CURRENT_TIMESTAMP output
const sqliteLayout = "2006-01-02 15:04:05"

// Timestamp reads DATETIME columns whether the driver hands back a
// time.Time (sqlite3) or plain text (libSQL over HTTP).
type Timestamp time.Time

var timestampLayouts = []string{
	sqliteLayout,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02",
}

// Time returns the underlying time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// Scan implements sql.Scanner
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
		return nil
	case time.Time:
		*t = Timestamp(v)
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	case int64:
		*t = Timestamp(time.Unix(v, 0).UTC())
		return nil
	}
	return fmt.Errorf("cannot scan %T into Timestamp", src)
}

func (t *Timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// Value implements driver.Valuer
func (t Timestamp) Value() (driver.Value, error) {
	if time.Time(t).IsZero() {
		return nil, nil
	}
	return time.Time(t).UTC().Format(sqliteLayout), nil
}

// MarshalJSON renders the timestamp as RFC 3339
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339))
}

// UnmarshalJSON accepts any layout Scan accepts
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return t.parse(s)
}
