package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"momolens/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// SMS is one message element in a fixture archive.
type SMS struct {
	Address string
	Date    int64 // epoch milliseconds
	Body    string
}

// BackupXML renders a well-formed SMS-backup archive containing the given
// messages.
func BackupXML(messages ...SMS) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(&b, `<smses count="%d">`+"\n", len(messages))
	for _, m := range messages {
		fmt.Fprintf(&b, `  <sms address="%s" date="%d" body="%s" />`+"\n",
			xmlEscape(m.Address), m.Date, xmlEscape(m.Body))
	}
	b.WriteString("</smses>\n")
	return b.String()
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}

// Draft builds a valid transaction draft with a unique date and default
// amounts, suitable for store tests.
func Draft(category models.Category, amount float64, date time.Time) models.Draft {
	return models.Draft{
		Date:     date,
		Category: category,
		Amount:   amount,
		RawBody:  fmt.Sprintf("fixture message %d", nextID()),
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }
