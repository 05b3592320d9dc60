package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Time is a nullable timestamp. The zero value is written as null. Besides
// RFC 3339 it reads the naive ISO layouts found in older files, in the
// location set by SetLegacyLocation.
type Time struct {
	time.Time
}

var legacyLocation atomic.Pointer[time.Location]

// SetLegacyLocation sets the zone naive timestamps are read in. A nil
// location falls back to time.Local.
func SetLegacyLocation(loc *time.Location) {
	legacyLocation.Store(loc)
}

func legacyZone() *time.Location {
	if loc := legacyLocation.Load(); loc != nil {
		return loc
	}
	return time.Local
}

var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func NewTime(t time.Time) Time {
	return Time{Time: t}
}

func ParseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return parsed, nil
	}
	zone := legacyZone()
	for _, layout := range legacyLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, zone); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("storage: unrecognised time %q", raw)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Snowflake is a platform id. Older files store ids as JSON numbers; they
// are always written back as strings.
type Snowflake string

func (s Snowflake) String() string {
	return string(s)
}

func (s Snowflake) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *Snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*s = Snowflake(raw)
		return nil
	}
	if _, err := strconv.ParseUint(string(data), 10, 64); err != nil {
		return fmt.Errorf("storage: invalid id %s", data)
	}
	*s = Snowflake(data)
	return nil
}
