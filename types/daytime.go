package types

import (
	"encoding/json"
	"strings"
	"time"
)

// DateTime wraps a time.Time struct, allowing for improved dateTime JSON compatibility.
type DateTime struct {
	time.Time
}

// NewDateTime Creates a new DateTime struct, embedding a time.Time struct.
func NewDateTime(time time.Time) *DateTime {
	return &DateTime{Time: time}
}

// timestamp layouts observed on real hardware; RFC3339 is the protocol form,
// the rest are firmware deviations (no zone, space separator)
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (dt *DateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		t, err = time.Parse(layout, raw)
		if err == nil {
			dt.Time = t.UTC()
			return nil
		}
	}
	return err
}

func (dt DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.UTC().Format("2006-01-02T15:04:05.000Z"))
}
