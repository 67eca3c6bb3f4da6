package pdfstmt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtimport/internal/model"
)

type fakeExtractor struct {
	reply string
	err   error
	calls int
	text  string
}

func (f *fakeExtractor) Extract(_ context.Context, text string) (string, error) {
	f.calls++
	f.text = text
	return f.reply, f.err
}

type fakeText struct {
	text string
	err  error
}

func (f fakeText) ExtractText([]byte) (string, error) { return f.text, f.err }

const threeTxns = "Here you go:\n```json\n" + `{
  "transactions": [
    {"date": "2024-02-05", "description": "NETFLIX.COM", "amount": -22.99, "type": "debit", "referenceId": "", "confidence": "high"},
    {"date": "2024-02-15", "description": "ACME PAYROLL {direct}", "amount": "2,500.00", "type": "credit", "referenceId": "DD-991", "confidence": "medium"},
    {"date": "2024-02-20", "description": "Smudged row", "amount": 15, "type": "debit", "referenceId": null, "confidence": "low"}
  ]
}` + "\n```\n"

func TestParse_ConfidencePartition(t *testing.T) {
	ext := &fakeExtractor{reply: threeTxns}
	p := &Parser{Text: fakeText{text: "STATEMENT\n02/05 NETFLIX 22.99"}, Extractor: ext}

	res, err := p.Parse(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, 1, ext.calls)
	assert.Equal(t, "STATEMENT\n02/05 NETFLIX 22.99", ext.text)

	require.Len(t, res.Transactions, 2)
	require.Len(t, res.LowConfidence, 1)

	netflix := res.Transactions[0]
	assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), netflix.Date)
	assert.True(t, netflix.Amount.Equal(decimal.RequireFromString("22.99")))
	assert.Equal(t, model.TxDebit, netflix.Type)
	assert.Nil(t, netflix.ReferenceID)

	payroll := res.Transactions[1]
	assert.Equal(t, "ACME PAYROLL {direct}", payroll.Description)
	assert.True(t, payroll.Amount.Equal(decimal.RequireFromString("2500")))
	require.NotNil(t, payroll.ReferenceID)
	assert.Equal(t, "DD-991", *payroll.ReferenceID)

	assert.Equal(t, "Smudged row", res.LowConfidence[0].Description)
	assert.Nil(t, res.LowConfidence[0].ReferenceID)
}

func TestParse_EmptyTextSkipsExtractor(t *testing.T) {
	ext := &fakeExtractor{reply: threeTxns}
	p := &Parser{Text: fakeText{text: "  \n\t "}, Extractor: ext}

	res, err := p.Parse(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Transactions)
	assert.Empty(t, res.LowConfidence)
	assert.Zero(t, ext.calls)
}

func TestParse_TextError(t *testing.T) {
	p := &Parser{Text: fakeText{err: errors.New("boom")}, Extractor: &fakeExtractor{}}
	_, err := p.Parse(context.Background(), nil)
	assert.EqualError(t, err, "boom")
}

func TestParseText_NoJSON(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose", "I could not find any transactions."},
		{"unbalanced", `{"transactions": [`},
		{"invalid object", `{transactions: []}`},
		{"wrong shape", `{"transactions": "none"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Parser{Extractor: &fakeExtractor{reply: tt.reply}}
			_, err := p.ParseText(context.Background(), "some text")
			assert.ErrorIs(t, err, ErrNoJSON)
		})
	}
}

func TestParseText_ExtractorError(t *testing.T) {
	boom := errors.New("rate limited")
	p := &Parser{Extractor: &fakeExtractor{err: boom}}
	_, err := p.ParseText(context.Background(), "text")
	assert.ErrorIs(t, err, boom)
}

func TestParseText_NoExtractor(t *testing.T) {
	_, err := (&Parser{}).ParseText(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNoExtractor)
}

func TestParseText_DropsMalformed(t *testing.T) {
	reply := `{"transactions": [
		{"date": "sometime", "description": "bad date", "amount": 1, "type": "debit"},
		{"date": "2024-03-01", "description": "bad type", "amount": 1, "type": "transfer"},
		{"date": "2024-03-01", "description": "bad amount", "amount": "lots", "type": "debit"},
		{"date": "01/03/2024", "description": "fallback date", "amount": 7.5, "type": "CREDIT"}
	]}`
	p := &Parser{Extractor: &fakeExtractor{reply: reply}}

	res, err := p.ParseText(context.Background(), "text")
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	got := res.Transactions[0]
	assert.Equal(t, "fallback date", got.Description)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got.Date)
	assert.Equal(t, model.TxCredit, got.Type)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"brace in string", `x {"a":"}{"} y`, `{"a":"}{"}`, true},
		{"escaped quote", `{"a":"say \"}\""}`, `{"a":"say \"}\""}`, true},
		{"nested", `{"a":{"b":[1,2]}} trailing {"c":2}`, `{"a":{"b":[1,2]}}`, true},
		{"skips invalid first", `{oops} then {"a":1}`, `{"a":1}`, true},
		{"none", "no json here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLibraryText_RejectsGarbage(t *testing.T) {
	_, err := LibraryText{}.ExtractText([]byte("not a pdf"))
	assert.Error(t, err)
}
