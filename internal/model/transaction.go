package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TxType is the direction of money movement for a statement line.
type TxType string

const (
	TxCredit TxType = "credit" // money in
	TxDebit  TxType = "debit"  // money out
)

// Valid reports whether t is one of the known directions.
func (t TxType) Valid() bool {
	return t == TxCredit || t == TxDebit
}

// ParsedTransaction is one bank-statement line in canonical, format-independent form.
// Amount is always non-negative; direction lives in Type.
type ParsedTransaction struct {
	Date        time.Time       // UTC midnight
	Description string          //nolint:revive // plain field name is clearest
	Amount      decimal.Decimal // magnitude, never negative
	Type        TxType
	ReferenceID *string // bank-issued ID, nil if absent
}

// Reference returns the reference ID or "" when absent.
func (t ParsedTransaction) Reference() string {
	if t.ReferenceID == nil {
		return ""
	}
	return *t.ReferenceID
}

// SignedAmount returns Amount negated for debits.
func (t ParsedTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TxDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// ExistingTransaction is the dedup-relevant projection of a stored transaction.
type ExistingTransaction struct {
	ReferenceID *string
	Fingerprint string // computed at original import time
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// NewTransaction builds a ParsedTransaction, normalizing the date to a UTC
// calendar day and the amount to its absolute value.
func NewTransaction(date time.Time, desc string, amount decimal.Decimal, typ TxType, ref string) ParsedTransaction {
	return ParsedTransaction{
		Date:        CalendarDay(date),
		Description: desc,
		Amount:      amount.Abs(),
		Type:        typ,
		ReferenceID: OptionalString(ref),
	}
}

// CalendarDay truncates t to midnight UTC of its own calendar date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OptionalString returns nil for blank strings, otherwise a pointer to the trimmed value.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
