// Package parser implements the SMS classification and extraction pipeline:
// it takes raw message bodies and deterministically derives a category, an
// optional amount, and an optional timestamp.
package parser

import "strings"

// Category labels assigned by the classifier.
const (
	CategoryIncoming    = "Incoming Money"
	CategoryPayments    = "Payments"
	CategoryTransfers   = "Transfers"
	CategoryDeposits    = "Bank Deposits"
	CategoryAirtime     = "Airtime Bill Payments"
	CategoryWithdrawals = "Withdrawals"
)

// categoryRule maps a trigger keyword to its category label.
type categoryRule struct {
	Keyword string
	Label   string
}

// categoryRules is the ordered rule table. Order is significant: the first
// keyword found in the body wins, so a body containing both "payment" and
// "withdrawn" classifies as Payments.
var categoryRules = []categoryRule{
	{"received", CategoryIncoming},
	{"payment", CategoryPayments},
	{"transferred", CategoryTransfers},
	{"deposit", CategoryDeposits},
	{"airtime", CategoryAirtime},
	{"withdrawn", CategoryWithdrawals},
}

// Classify determines the transaction category for a lower-cased message body.
// Keywords are tested in the declared rule order and matched by substring
// containment; the first hit wins. The second return value is false when no
// keyword matches, which means the message is not a tracked transaction type
// and must be dropped, not defaulted.
func Classify(bodyLower string) (string, bool) {
	for _, rule := range categoryRules {
		if strings.Contains(bodyLower, rule.Keyword) {
			return rule.Label, true
		}
	}
	return "", false
}

// Categories returns the category labels in rule order.
func Categories() []string {
	labels := make([]string, 0, len(categoryRules))
	for _, rule := range categoryRules {
		labels = append(labels, rule.Label)
	}
	return labels
}
