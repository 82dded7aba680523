package leads

import (
	"strings"
	"time"
)

// DefaultSource tags leads whose caller did not name a form.
const DefaultSource = "ZMA-AUTO Landing"

// TimestampLayout is the ISO-8601 instant format sent to the CRM.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Record is a visitor contact on its way to the CRM. It lives for the
// duration of one outbound call and is never stored.
type Record struct {
	Name      string
	Phone     string
	Telegram  string
	Source    string
	Timestamp time.Time
}

// Payload is the exact wire shape posted to the CRM webhook.
type Payload struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Telegram  string `json:"telegram"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

// Validate validates the visitor-supplied fields.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(r.Phone) == "" {
		return ErrMissingPhone
	}
	if strings.TrimSpace(r.Telegram) == "" {
		return ErrMissingTelegram
	}
	return nil
}

// Payload stamps the record with sentAt and returns its wire form.
func (r Record) Payload(sentAt time.Time) Payload {
	source := r.Source
	if strings.TrimSpace(source) == "" {
		source = DefaultSource
	}
	return Payload{
		Name:      r.Name,
		Phone:     r.Phone,
		Telegram:  r.Telegram,
		Source:    source,
		Timestamp: FormatTimestamp(sentAt),
	}
}

// FormatTimestamp renders t as a UTC instant with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
