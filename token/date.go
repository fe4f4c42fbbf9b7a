package token

import (
	"time"

	"github.com/oauthkit/oauthkit/errors"
)

// TimeLayout is the wire format of the expiration_date response field:
// second precision, UTC, with a literal Z suffix.
const TimeLayout = "2006-01-02T15:04:05Z"

// FormatUTC renders t in the expiration_date wire format.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseUTC parses a timestamp in the expiration_date wire format. The
// returned time is in UTC.
func ParseUTC(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrap(err, 0)
	}
	return t, nil
}
