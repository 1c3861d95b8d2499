// Package archive validates and parses SMS-backup XML archives into
// mobile-money transaction drafts.
package archive

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "momolens/internal/errors"
	"momolens/internal/extract"
	"momolens/internal/logger"
	"momolens/internal/models"
)

// momoSenders are the known mobile-money sender aliases, matched
// case-insensitively against the SMS address attribute.
var momoSenders = map[string]bool{
	"m-money":          true,
	"mtn mobile money": true,
	"momo":             true,
}

// progressInterval controls how often Parse logs a progress line.
const progressInterval = 100

// Parser walks SMS-backup archives and turns mobile-money messages into
// transaction drafts using the extract package.
type Parser struct {
	log *zap.SugaredLogger
}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{log: logger.Get()}
}

// Validate checks the structure of an SMS-backup archive without parsing
// it fully. It returns false with a human-readable reason when the root
// element is not an SMS-backup container, the root lacks a count
// attribute, no sms element exists, or a sampled sms element is missing
// the address, date, or body attributes.
func (p *Parser) Validate(r io.Reader) (bool, string) {
	decoder := xml.NewDecoder(r)

	root, err := nextStartElement(decoder)
	if err != nil {
		return false, fmt.Sprintf("XML validation error: %v", err)
	}
	if root == nil || root.Name.Local != "smses" {
		return false, "Not a valid SMS backup XML file"
	}
	if attr(root, "count") == nil {
		return false, "Missing count attribute in root element"
	}

	// Sample the first sms element and check its required attributes.
	for {
		el, err := nextStartElement(decoder)
		if err != nil {
			return false, fmt.Sprintf("XML validation error: %v", err)
		}
		if el == nil {
			return false, "No SMS messages found in file"
		}
		if el.Name.Local != "sms" {
			continue
		}

		var missing []string
		for _, required := range []string{"address", "date", "body"} {
			if attr(el, required) == nil {
				missing = append(missing, required)
			}
		}
		if len(missing) > 0 {
			return false, fmt.Sprintf("SMS elements missing required attributes: %s", strings.Join(missing, ", "))
		}
		return true, "Valid SMS backup XML file"
	}
}

// Parse walks every sms element in document order and returns the drafts
// extracted from mobile-money messages plus the total number of sms
// elements seen. Messages from other senders count toward the total but
// produce no draft. Per-message extraction problems degrade that message
// to default fields; only a malformed document aborts the walk.
func (p *Parser) Parse(r io.Reader) ([]models.Draft, int, error) {
	decoder := xml.NewDecoder(r)

	var drafts []models.Draft
	total := 0

	for {
		el, err := nextStartElement(decoder)
		if err != nil {
			return nil, 0, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidArchive,
				fmt.Sprintf("Invalid XML file format: %v", err)), err)
		}
		if el == nil {
			break
		}
		if el.Name.Local != "sms" {
			continue
		}
		total++

		address := attrValue(el, "address")
		if !momoSenders[strings.ToLower(address)] {
			continue
		}

		body := attrValue(el, "body")
		drafts = append(drafts, p.buildDraft(body, attrValue(el, "date")))

		if total%progressInterval == 0 {
			p.log.Infow("parsing progress",
				"processed", total,
				"transactions", len(drafts),
			)
		}
	}

	p.log.Infow("parsing complete",
		"total_messages", total,
		"transactions", len(drafts),
	)
	return drafts, total, nil
}

// buildDraft classifies a message body and runs every field extractor.
func (p *Parser) buildDraft(body, dateMillis string) models.Draft {
	draft := models.Draft{
		Date:          parseTimestamp(dateMillis),
		Category:      extract.Classify(body),
		Amount:        extract.Amount(body),
		Fee:           extract.Fee(body),
		Balance:       extract.Balance(body),
		TransactionID: extract.TransactionID(body),
		Message:       extract.MessageContent(body),
		RawBody:       body,
	}
	draft.RecipientName, draft.RecipientNumber = extract.RecipientInfo(body)
	draft.SenderName, draft.SenderNumber = extract.SenderInfo(body)
	return draft
}

// parseTimestamp converts an epoch-milliseconds string to a time. An
// unparsable or out-of-range value substitutes the current time instead of
// failing the whole parse.
func parseTimestamp(millis string) time.Time {
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil || ms <= 0 {
		return time.Now()
	}
	t := time.UnixMilli(ms)
	if t.Year() < 1970 || t.Year() > 3000 {
		return time.Now()
	}
	return t
}

// nextStartElement returns the next start element in the stream, or nil at
// end of document.
func nextStartElement(decoder *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if el, ok := tok.(xml.StartElement); ok {
			return &el, nil
		}
	}
}

// attr returns the named attribute or nil when absent.
func attr(el *xml.StartElement, name string) *xml.Attr {
	for i := range el.Attr {
		if el.Attr[i].Name.Local == name {
			return &el.Attr[i]
		}
	}
	return nil
}

// attrValue returns the named attribute's value, or "" when absent.
func attrValue(el *xml.StartElement, name string) string {
	if a := attr(el, name); a != nil {
		return a.Value
	}
	return ""
}
