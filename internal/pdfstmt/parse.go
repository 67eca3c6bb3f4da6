// Package pdfstmt reads PDF bank statements by extracting their text and
// handing it to an AI extractor that returns transactions as JSON.
package pdfstmt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/datefmt"
	"github.com/cleared-dev/stmtimport/internal/model"
)

var (
	// ErrNoJSON is returned when the extractor's reply holds no decodable JSON object.
	ErrNoJSON = errors.New("AI response did not contain valid JSON")

	// ErrNoExtractor is returned when a PDF is parsed without an extractor.
	ErrNoExtractor = errors.New("no AI extractor configured")
)

// Extractor sends statement text to a model and returns its raw reply.
type Extractor interface {
	Extract(ctx context.Context, text string) (string, error)
}

// Result holds the transactions read from one PDF. LowConfidence entries were
// marked ambiguous by the extractor and need human review.
type Result struct {
	Transactions  []model.ParsedTransaction
	LowConfidence []model.ParsedTransaction
}

// Parser reads PDF statements.
type Parser struct {
	Text      TextExtractor
	Extractor Extractor
}

// NewParser returns a Parser using the default text extractor.
func NewParser(ext Extractor) *Parser {
	return &Parser{Text: LibraryText{}, Extractor: ext}
}

// Parse extracts transactions from a PDF file's bytes.
func (p *Parser) Parse(ctx context.Context, data []byte) (Result, error) {
	te := p.Text
	if te == nil {
		te = LibraryText{}
	}
	text, err := te.ExtractText(data)
	if err != nil {
		return Result{}, err
	}
	return p.ParseText(ctx, text)
}

// ParseText runs extraction on already extracted statement text. Blank text
// yields an empty result without calling the extractor.
func (p *Parser) ParseText(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, nil
	}
	if p.Extractor == nil {
		return Result{}, ErrNoExtractor
	}

	reply, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("extracting transactions: %w", err)
	}

	raw, ok := extractJSON(reply)
	if !ok {
		return Result{}, ErrNoJSON
	}
	var resp response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return resp.result(), nil
}

// response is the JSON shape the extractor is instructed to produce.
type response struct {
	Transactions []item `json:"transactions"`
}

type item struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	Type        string          `json:"type"`
	ReferenceID *string         `json:"referenceId"`
	Confidence  string          `json:"confidence"`
}

func (r response) result() Result {
	var res Result
	for _, it := range r.Transactions {
		txn, ok := it.transaction()
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(it.Confidence), "low") {
			res.LowConfidence = append(res.LowConfidence, txn)
		} else {
			res.Transactions = append(res.Transactions, txn)
		}
	}
	return res
}

func (it item) transaction() (model.ParsedTransaction, bool) {
	date, ok := parseDate(it.Date)
	if !ok {
		return model.ParsedTransaction{}, false
	}
	typ := model.TxType(strings.ToLower(strings.TrimSpace(it.Type)))
	if !typ.Valid() {
		return model.ParsedTransaction{}, false
	}
	amount, ok := parseAmount(it.Amount)
	if !ok {
		return model.ParsedTransaction{}, false
	}
	var ref string
	if it.ReferenceID != nil {
		ref = *it.ReferenceID
	}
	return model.NewTransaction(date, it.Description, amount, typ, ref), true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return datefmt.Parse(s)
}

// parseAmount accepts a JSON number or a numeric string.
func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Decimal{}, false
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.Decimal{}, false
		}
		s = strings.NewReplacer(",", "", "$", "", " ", "").Replace(strings.TrimSpace(str))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d.Abs(), true
}

// extractJSON returns the first balanced top-level JSON object in s,
// ignoring braces inside string literals. Markdown fences and prose around
// the object are skipped.
func extractJSON(s string) (string, bool) {
	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end, ok := matchBrace(s, start); ok {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
