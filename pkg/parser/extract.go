package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/kayitare/momoledger/pkg/api"
)

// ErrMalformedAmount reports an amount-pattern match whose digit span is empty
// after stripping. It is fatal for the offending message only and must never
// be coerced to zero.
var ErrMalformedAmount = errors.New("malformed amount in message body")

var (
	// timestampPattern matches the first "YYYY-MM-DD HH:MM:SS" shaped
	// substring. No calendar validation is performed: "2024-13-99 25:61:61"
	// is accepted. The source notifications always carry well-formed dates,
	// so the looseness is deliberate.
	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`)

	// amountPattern matches digits followed by the RWF currency marker. The
	// caller pre-lowercases the body, so only "rwf" is needed here.
	amountPattern = regexp.MustCompile(`\d+\s*rwf`)

	nonDigits = regexp.MustCompile(`\D`)
)

// Extract scans a lower-cased message body for an optional timestamp and an
// optional amount. The two scans are independent and each uses only the first
// match in left-to-right order, so a trailing balance figure never shadows the
// transaction amount. Absence of either pattern is not an error.
func Extract(bodyLower string) (api.ExtractedFields, error) {
	var fields api.ExtractedFields

	if match := timestampPattern.FindString(bodyLower); match != "" {
		fields.Timestamp = &match
	}

	if match := amountPattern.FindString(bodyLower); match != "" {
		amount, err := parseAmount(match)
		if err != nil {
			return api.ExtractedFields{}, err
		}
		fields.Amount = &amount
	}

	return fields, nil
}

// parseAmount strips every non-digit character from an amount match and
// parses the remainder as a base-10 integer.
func parseAmount(match string) (int64, error) {
	digits := nonDigits.ReplaceAllString(match, "")
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, match)
	}

	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parsing %q: %w", ErrMalformedAmount, digits, err)
	}

	return amount, nil
}
