package parser

import (
	"fmt"
	"strings"

	"github.com/kayitare/momoledger/pkg/api"
)

// Build composes the classifier and extractor output into a normalized
// transaction record. It returns (nil, nil) when the message carries no body
// or no tracked keyword; both cases are normal control flow, not errors. The
// body is lower-cased once and that form is handed to both the classifier and
// the extractor, while the record keeps the verbatim original body as its
// description.
func Build(raw api.RawMessage) (*api.TransactionRecord, error) {
	if raw.Body == "" {
		return nil, nil
	}

	bodyLower := strings.ToLower(raw.Body)

	category, ok := Classify(bodyLower)
	if !ok {
		return nil, nil
	}

	fields, err := Extract(bodyLower)
	if err != nil {
		return nil, fmt.Errorf("extracting fields: %w", err)
	}

	return &api.TransactionRecord{
		Category:    category,
		Amount:      fields.Amount,
		Timestamp:   fields.Timestamp,
		Description: raw.Body,
	}, nil
}
