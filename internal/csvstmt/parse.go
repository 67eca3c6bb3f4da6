// Package csvstmt parses bank statement CSV exports whose layout is not
// known in advance.
//
// Layout detection tries, in order: a caller-supplied mapping, a header row
// matched against known column names, and finally the shape of the column
// values. Rows that cannot be decoded are dropped one at a time; a file whose
// layout cannot be detected yields no transactions rather than an error.
package csvstmt

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/datefmt"
	"github.com/cleared-dev/stmtimport/internal/model"
)

// Report describes how a file was decoded.
type Report struct {
	Detected     bool
	Strategy     string
	Mapping      ColumnMapping
	HeaderRows   int
	Transactions []model.ParsedTransaction
	SkippedRows  int
}

// Parse decodes CSV content into transactions. manual, when non-nil,
// overrides layout detection.
func Parse(content string, manual *ColumnMapping) []model.ParsedTransaction {
	return Analyze(content, manual).Transactions
}

// Analyze is Parse with details about the detected layout.
func Analyze(content string, manual *ColumnMapping) Report {
	return analyzeRows(splitRows(content), manual)
}

// DetectLayout returns the mapping that Parse would use for content.
func DetectLayout(content string) (ColumnMapping, bool) {
	l, ok := detect(splitRows(content), nil)
	return l.mapping, ok
}

func analyzeRows(rows [][]string, manual *ColumnMapping) Report {
	l, ok := detect(rows, manual)
	if !ok {
		return Report{Mapping: NewMapping()}
	}

	rep := Report{
		Detected:   true,
		Strategy:   l.strategy,
		Mapping:    l.mapping,
		HeaderRows: l.headerRows,
	}
	for _, row := range rows[l.headerRows:] {
		txn, ok := decodeRow(row, l.mapping)
		if !ok {
			rep.SkippedRows++
			continue
		}
		rep.Transactions = append(rep.Transactions, txn)
	}
	return rep
}

var (
	creditKeywords = map[string]bool{"credit": true, "cr": true, "c": true}
	debitKeywords  = map[string]bool{"debit": true, "dr": true, "d": true}
)

// decodeRow converts one row. ok is false for rows that are not transactions
// (footers, balances, repeated headers) or that fail to parse.
func decodeRow(row []string, m ColumnMapping) (model.ParsedTransaction, bool) {
	date, ok := datefmt.Parse(cell(row, m.Date))
	if !ok {
		return model.ParsedTransaction{}, false
	}

	var (
		amount decimal.Decimal
		typ    model.TxType
	)
	if m.SplitAmounts() {
		credit, hasCredit := parseAmount(cell(row, m.Credit))
		debit, hasDebit := parseAmount(cell(row, m.Debit))
		switch {
		case hasCredit && credit.IsPositive():
			amount, typ = credit, model.TxCredit
		case hasDebit:
			amount, typ = debit, model.TxDebit
		case hasCredit:
			amount, typ = credit, model.TxDebit
		default:
			return model.ParsedTransaction{}, false
		}
	} else {
		amount, ok = parseAmount(cell(row, m.Amount))
		if !ok {
			return model.ParsedTransaction{}, false
		}
		typ = model.TxCredit
		if amount.IsNegative() {
			typ = model.TxDebit
		}
	}

	if m.Type >= 0 {
		kw := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(cell(row, m.Type)), "."))
		switch {
		case creditKeywords[kw]:
			typ = model.TxCredit
		case debitKeywords[kw]:
			typ = model.TxDebit
		}
	}

	return model.NewTransaction(date, cell(row, m.Description), amount, typ, cell(row, m.Reference)), true
}
