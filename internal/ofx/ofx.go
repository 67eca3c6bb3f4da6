// Package ofx extracts statement transactions from OFX and QFX files.
//
// Both the SGML dialect (leaf elements without closing tags) and the XML
// dialect are read with the same tag scanner; the document is never
// validated as a whole. A record missing its posting date or amount is
// dropped without affecting the rest of the file.
package ofx

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
)

const (
	openTrn   = "<STMTTRN>"
	closeTrn  = "</STMTTRN>"
	closeList = "</BANKTRANLIST>"
)

var (
	// A leaf value runs to the next tag or line end.
	tagPattern = regexp.MustCompile(`(?i)<(TRNTYPE|DTPOSTED|TRNAMT|FITID|NAME|MEMO|CHECKNUM)>([^<\r\n]*)`)
	// YYYYMMDD[HHMMSS[.XXX]][[±N:TZ]]
	datePattern = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})(?:\d{4,6}(?:\.\d+)?)?(?:\[[^\]]*\])?$`)
)

var (
	creditTypes = map[string]bool{"CREDIT": true, "DEP": true, "DIRECTDEP": true, "INT": true}
	debitTypes  = map[string]bool{
		"DEBIT": true, "ATM": true, "POS": true, "XFER": true, "FEE": true,
		"SRVCHG": true, "PAYMENT": true, "CHECK": true,
	}
)

// record holds the raw tag values of one STMTTRN block.
type record map[string]string

// Parse returns the transactions in an OFX/QFX document.
func Parse(content string) []model.ParsedTransaction {
	var txns []model.ParsedTransaction
	for _, block := range blocks(content) {
		if txn, ok := decode(scan(block)); ok {
			txns = append(txns, txn)
		}
	}
	return txns
}

// blocks splits content into STMTTRN bodies. A block ends at its closing
// tag, the next opening tag, the end of the transaction list, or EOF.
func blocks(content string) []string {
	upper := asciiUpper(content)
	var out []string
	pos := 0
	for {
		i := strings.Index(upper[pos:], openTrn)
		if i < 0 {
			return out
		}
		start := pos + i + len(openTrn)
		end := len(content)
		for _, stop := range []string{closeTrn, openTrn, closeList} {
			if j := strings.Index(upper[start:], stop); j >= 0 && start+j < end {
				end = start + j
			}
		}
		out = append(out, content[start:end])
		pos = end
	}
}

func scan(block string) record {
	rec := make(record)
	for _, m := range tagPattern.FindAllStringSubmatch(block, -1) {
		tag := strings.ToUpper(m[1])
		if _, seen := rec[tag]; seen {
			continue
		}
		rec[tag] = html.UnescapeString(strings.TrimSpace(m[2]))
	}
	return rec
}

func decode(rec record) (model.ParsedTransaction, bool) {
	date, ok := parseDate(rec["DTPOSTED"])
	if !ok {
		return model.ParsedTransaction{}, false
	}
	amount, ok := parseAmount(rec["TRNAMT"])
	if !ok {
		return model.ParsedTransaction{}, false
	}

	typ := model.TxCredit
	switch trnType := strings.ToUpper(rec["TRNTYPE"]); {
	case creditTypes[trnType]:
		typ = model.TxCredit
	case debitTypes[trnType]:
		typ = model.TxDebit
	case amount.IsNegative():
		typ = model.TxDebit
	}

	return model.NewTransaction(date, description(rec), amount, typ, rec["FITID"]), true
}

// description prefers NAME, then MEMO, then a synthesized check label.
func description(rec record) string {
	switch {
	case rec["NAME"] != "":
		return rec["NAME"]
	case rec["MEMO"] != "":
		return rec["MEMO"]
	case rec["CHECKNUM"] != "":
		return "Check #" + rec["CHECKNUM"]
	default:
		return ""
	}
}

// parseDate keeps only the calendar date of an OFX datetime.
func parseDate(s string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", m[1]+m[2]+m[3])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	if s == "" {
		return decimal.Zero, false
	}
	// Some banks emit a decimal comma.
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// asciiUpper upper-cases ASCII letters only so byte offsets stay aligned
// with the original string.
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
