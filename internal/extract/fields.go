package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var amountPatterns = compileAll(
	`(\d+(?:,\d+)*(?:\.\d+)?)\s*RWF`,
	`of\s+(\d+(?:,\d+)*(?:\.\d+)?)\s*RWF`,
	`received\s+(\d+(?:,\d+)*(?:\.\d+)?)\s*RWF`,
	`sent\s+(\d+(?:,\d+)*(?:\.\d+)?)\s*RWF`,
	`withdrawn\s+(\d+(?:,\d+)*(?:\.\d+)?)\s*RWF`,
	`deposited\s+(\d+(?:,\d+)*(?:\.\d+)?)\s*RWF`,
)

var feePatterns = compileAll(
	`Fee\s*(?:was|:)?\s*(\d+(?:\.\d+)?)\s*RWF`,
	`fee\s*(?:of)?\s*(\d+(?:\.\d+)?)\s*RWF`,
	`charge\s*(?:of)?\s*(\d+(?:\.\d+)?)\s*RWF`,
)

var balancePatterns = compileAll(
	`balance[:\s]+(\d+(?:,\d+)*(?:\.\d+)?)\s*RWF`,
	`NEW BALANCE\s*:?\s*(\d+(?:,\d+)*(?:\.\d+)?)\s*RWF`,
	`current.*balance.*?(\d+(?:,\d+)*(?:\.\d+)?)\s*RWF`,
	`remaining.*balance.*?(\d+(?:,\d+)*(?:\.\d+)?)\s*RWF`,
)

var transactionIDPatterns = compileAll(
	`TxId:\s*(\w+)`,
	`Transaction Id:\s*(\w+)`,
	`Financial Transaction Id:\s*(\w+)`,
	`Ref:\s*(\w+)`,
	`Reference:\s*(\w+)`,
)

var recipientPatterns = compileAll(
	`to\s+([A-Za-z\s]+)\s+(\d{5})`,
	`to\s+([A-Za-z\s]+)\s*\((\d+)\)`,
	`from\s+([A-Za-z\s]+)\s*\(\*+(\d+)\)`,
	`agent\s+([A-Za-z\s]+)\s*\((\d+)\)`,
	`recipient\s+([A-Za-z\s]+)\s*\((\d+)\)`,
)

var senderPatterns = compileAll(
	`from\s+([A-Za-z\s]+)\s*\(\*+(\d+)\)`,
	`sender\s+([A-Za-z\s]+)\s*\((\d+)\)`,
	`initiated by\s+([A-Za-z\s]+)\s*\((\d+)\)`,
)

var messagePatterns = compileAll(
	`message[:\s]+"([^"]+)"`,
	`memo[:\s]+"([^"]+)"`,
	`note[:\s]+"([^"]+)"`,
)

// Amount extracts the transaction amount near the RWF currency marker.
// Thousands separators are stripped. Returns 0 when no pattern matches or
// the matched text is not numeric.
func Amount(body string) float64 {
	if v, ok := firstDecimal(amountPatterns, body); ok {
		return v
	}
	return 0
}

// Fee extracts the transaction fee following a fee/charge phrase.
// Returns 0 on no match.
func Fee(body string) float64 {
	if v, ok := firstDecimal(feePatterns, body); ok {
		return v
	}
	return 0
}

// Balance extracts the stated account balance. Returns nil on no match;
// a message stating a zero balance yields a non-nil 0.
func Balance(body string) *float64 {
	if v, ok := firstDecimal(balancePatterns, body); ok {
		return &v
	}
	return nil
}

// TransactionID extracts the external reference token following a
// reference-label phrase, or nil when none is present.
func TransactionID(body string) *string {
	for _, pattern := range transactionIDPatterns {
		if m := pattern.FindStringSubmatch(body); m != nil {
			id := m[1]
			return &id
		}
	}
	return nil
}

// RecipientInfo extracts the recipient's name and number from phrase
// templates like "to NAME NUMBER", "to NAME (NUMBER)", or
// "agent NAME (NUMBER)". Both values are nil when nothing matches.
func RecipientInfo(body string) (name, number *string) {
	return firstNamedPair(recipientPatterns, body)
}

// SenderInfo extracts the sender's name and number from phrases like
// "from NAME (***NUMBER)". Both values are nil when nothing matches.
func SenderInfo(body string) (name, number *string) {
	return firstNamedPair(senderPatterns, body)
}

// MessageContent extracts the quoted memo following a message/memo/note
// label, or nil when none is present.
func MessageContent(body string) *string {
	for _, pattern := range messagePatterns {
		if m := pattern.FindStringSubmatch(body); m != nil {
			msg := strings.TrimSpace(m[1])
			return &msg
		}
	}
	return nil
}

// firstDecimal returns the first pattern's capture parsed as a decimal,
// with thousands separators removed. Non-numeric captures fall through to
// the next pattern.
func firstDecimal(patterns []*regexp.Regexp, body string) (float64, bool) {
	for _, pattern := range patterns {
		m := pattern.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

// firstNamedPair returns the trimmed name and number captured by the first
// matching pattern.
func firstNamedPair(patterns []*regexp.Regexp, body string) (*string, *string) {
	for _, pattern := range patterns {
		m := pattern.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		number := m[2]
		return &name, &number
	}
	return nil, nil
}
