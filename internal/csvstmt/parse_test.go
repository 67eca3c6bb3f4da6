package csvstmt

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtimport/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_HeaderLayout(t *testing.T) {
	txns := Parse("Date,Description,Amount\n2024-01-15,Grocery Store,-45.50\n", nil)
	require.Len(t, txns, 1)

	assert.Equal(t, day(2024, 1, 15), txns[0].Date)
	assert.Equal(t, "Grocery Store", txns[0].Description)
	assert.Equal(t, "45.50", txns[0].Amount.StringFixed(2))
	assert.Equal(t, model.TxDebit, txns[0].Type)
	assert.Nil(t, txns[0].ReferenceID)
}

func TestParse_QuotedCommaStaysInOneField(t *testing.T) {
	content := "Date,Description,Amount\n2024-01-15,\"Coffee, Tea, and Snacks\",12.00\n"
	txns := Parse(content, nil)
	require.Len(t, txns, 1)
	assert.Equal(t, "Coffee, Tea, and Snacks", txns[0].Description)
	assert.Equal(t, model.TxCredit, txns[0].Type)
}

func TestParse_EscapedQuote(t *testing.T) {
	content := "Date,Description,Amount\n2024-01-15,\"The \"\"Best\"\" Diner\",-8.25\n"
	txns := Parse(content, nil)
	require.Len(t, txns, 1)
	assert.Equal(t, `The "Best" Diner`, txns[0].Description)
}

func TestParse_ParenthesesAreNegative(t *testing.T) {
	txns := Parse("Date,Description,Amount\n2024-02-01,Rent,(100.00)\n", nil)
	require.Len(t, txns, 1)
	assert.True(t, txns[0].Amount.Equal(txns[0].Amount.Abs()))
	assert.Equal(t, "100.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, model.TxDebit, txns[0].Type)
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Empty(t, Parse("", nil))
	assert.Empty(t, Parse("\n\r\n  \n", nil))
}

func TestParse_UnknownLayout(t *testing.T) {
	content := "foo,bar\nhello,world\nagain,nothing\n"
	assert.Empty(t, Parse(content, nil))

	rep := Analyze(content, nil)
	assert.False(t, rep.Detected)
}

func TestParse_SkipsBadRows(t *testing.T) {
	content := `Date,Description,Amount
2024-01-15,Coffee,-3.50
not a date,Footer,1.00
2024-01-16,Broken amount,abc
2024-01-17,Salary,2500.00
,Closing balance,9999.99
`
	rep := Analyze(content, nil)
	require.Len(t, rep.Transactions, 2)
	assert.Equal(t, 3, rep.SkippedRows)
	assert.Equal(t, "Coffee", rep.Transactions[0].Description)
	assert.Equal(t, "Salary", rep.Transactions[1].Description)
	assert.Equal(t, model.TxCredit, rep.Transactions[1].Type)
}

func TestParse_CreditDebitColumns(t *testing.T) {
	content := `Posted Date,Payee,Money In,Money Out,Balance
25/03/2024,Employer Ltd,"1,500.00",,2000.00
26/03/2024,Supermarket,,£42.10,1957.90
`
	rep := Analyze(content, nil)
	require.True(t, rep.Detected)
	assert.Equal(t, StrategyHeader, rep.Strategy)
	assert.True(t, rep.Mapping.SplitAmounts())

	txns := rep.Transactions
	require.Len(t, txns, 2)
	assert.Equal(t, model.TxCredit, txns[0].Type)
	assert.Equal(t, "1500.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, day(2024, 3, 25), txns[0].Date)
	assert.Equal(t, model.TxDebit, txns[1].Type)
	assert.Equal(t, "42.10", txns[1].Amount.StringFixed(2))
}

func TestParse_TypeColumnWins(t *testing.T) {
	content := `Date,Narrative,Amount,Dr/Cr,Reference
05/03/2024,Refund,12.00,CR,ABC-1
05/03/2024,Card purchase,30.00,DR, 
`
	txns := Parse(content, nil)
	require.Len(t, txns, 2)

	assert.Equal(t, model.TxCredit, txns[0].Type)
	require.NotNil(t, txns[0].ReferenceID)
	assert.Equal(t, "ABC-1", *txns[0].ReferenceID)
	assert.Equal(t, day(2024, 3, 5), txns[0].Date)

	assert.Equal(t, model.TxDebit, txns[1].Type)
	assert.Equal(t, "30.00", txns[1].Amount.StringFixed(2))
	assert.Nil(t, txns[1].ReferenceID)
}

func TestParse_SubstringHeaderMatch(t *testing.T) {
	content := "Txn Posting Date,Full Description,Debit Amount,Credit Amount\n2024-04-02,Gym,25.00,\n2024-04-03,Interest,,0.42\n"
	rep := Analyze(content, nil)
	require.True(t, rep.Detected)
	assert.Equal(t, 0, rep.Mapping.Date)
	assert.Equal(t, 1, rep.Mapping.Description)
	assert.Equal(t, 2, rep.Mapping.Debit)
	assert.Equal(t, 3, rep.Mapping.Credit)

	require.Len(t, rep.Transactions, 2)
	assert.Equal(t, model.TxDebit, rep.Transactions[0].Type)
	assert.Equal(t, model.TxCredit, rep.Transactions[1].Type)
}

func TestParse_ContentLayout(t *testing.T) {
	content := `2024-01-02,-12.50,Corner Coffee Roasters
2024-01-03,-60.00,Electric Company Monthly Bill
2024-01-04,1200.00,Payroll Deposit ACME Corp
2024-01-05,-5.00,ATM Fee
`
	rep := Analyze(content, nil)
	require.True(t, rep.Detected)
	assert.Equal(t, StrategyContent, rep.Strategy)
	assert.Equal(t, 0, rep.Mapping.Date)
	assert.Equal(t, 1, rep.Mapping.Amount)
	assert.Equal(t, 2, rep.Mapping.Description)
	assert.Equal(t, 0, rep.HeaderRows)

	require.Len(t, rep.Transactions, 4)
	assert.Equal(t, "Payroll Deposit ACME Corp", rep.Transactions[2].Description)
	assert.Equal(t, model.TxCredit, rep.Transactions[2].Type)
}

func TestParse_ContentLayoutSplitColumns(t *testing.T) {
	content := `15/01/2024,Direct debit water board,30.00,
16/01/2024,Salary payment from employer,,2100.00
17/01/2024,Card payment bakery,4.20,
`
	rep := Analyze(content, nil)
	require.True(t, rep.Detected)
	assert.True(t, rep.Mapping.SplitAmounts())
	assert.Equal(t, 2, rep.Mapping.Credit)
	assert.Equal(t, 3, rep.Mapping.Debit)

	// Left column is read as credit: positive values there are money in.
	require.Len(t, rep.Transactions, 3)
	assert.Equal(t, model.TxCredit, rep.Transactions[0].Type)
	assert.Equal(t, model.TxDebit, rep.Transactions[1].Type)
}

func TestParse_ContentLayoutSparseNumberColumn(t *testing.T) {
	content := `2024-01-15,Coffee shop,-4.50,
2024-01-16,Salary payment from employer,2100.00,
2024-01-17,Grocery store weekly shop,-62.10,
2024-01-18,Check payment landlord,-1200.00,1042
2024-01-19,Interest,0.35,
`
	rep := Analyze(content, nil)
	require.True(t, rep.Detected)
	assert.Equal(t, StrategyContent, rep.Strategy)
	assert.False(t, rep.Mapping.SplitAmounts())
	assert.Equal(t, 2, rep.Mapping.Amount)
	assert.Equal(t, 1, rep.Mapping.Description)

	require.Len(t, rep.Transactions, 5)
	rent := rep.Transactions[3]
	assert.Equal(t, "Check payment landlord", rent.Description)
	assert.Equal(t, "1200.00", rent.Amount.StringFixed(2))
	assert.Equal(t, model.TxDebit, rent.Type)
}

func TestParse_ContentLayoutOverlappingSparseColumns(t *testing.T) {
	// Both columns are mostly blank but fill the same row, so they are not
	// a money in / money out pair.
	content := `15/01/2024,Direct debit water board,30.00,
16/01/2024,Salary payment from employer,,
17/01/2024,Card payment bakery,4.20,7
`
	assert.Empty(t, Parse(content, nil))
}

func TestParse_ContentLayoutNoDateColumn(t *testing.T) {
	content := "apples,1.00\npears,2.00\n"
	assert.Empty(t, Parse(content, nil))
}

func TestParse_ManualMapping(t *testing.T) {
	m := NewMapping()
	m.Date, m.Description, m.Amount = 2, 0, 1

	withHeader := "What,How Much,When\nBooks,-20.00,2024-05-01\n"
	txns := Parse(withHeader, &m)
	require.Len(t, txns, 1)
	assert.Equal(t, "Books", txns[0].Description)
	assert.Equal(t, day(2024, 5, 1), txns[0].Date)

	noHeader := "Books,-20.00,2024-05-01\nPens,-3.00,2024-05-02\n"
	assert.Len(t, Parse(noHeader, &m), 2)

	rep := Analyze(noHeader, &m)
	assert.Equal(t, StrategyManual, rep.Strategy)
	assert.Equal(t, 0, rep.HeaderRows)
}

func TestParse_ManualMappingOverridesHeader(t *testing.T) {
	m := NewMapping()
	m.Date, m.Description, m.Amount = 0, 2, 1
	content := "Date,Description,Amount\n2024-01-15,-45.50,Grocery Store\n"

	txns := Parse(content, &m)
	require.Len(t, txns, 1)
	assert.Equal(t, "Grocery Store", txns[0].Description)
	assert.Equal(t, "45.50", txns[0].Amount.StringFixed(2))
}

func TestParse_ChaseExport(t *testing.T) {
	data, err := os.ReadFile("../../testdata/chase_checking.csv")
	require.NoError(t, err)

	rep := Analyze(string(data), nil)
	require.True(t, rep.Detected)
	assert.Equal(t, 1, rep.Mapping.Date)
	assert.Equal(t, 2, rep.Mapping.Description)
	assert.Equal(t, 3, rep.Mapping.Amount)
	assert.Equal(t, 4, rep.Mapping.Type)
	assert.Equal(t, 6, rep.Mapping.Reference)

	txns := rep.Transactions
	require.Len(t, txns, 6)
	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", txns[0].Description)
	assert.Equal(t, "4.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, model.TxDebit, txns[0].Type)
	// 01/03/2025 is ambiguous and read day-first.
	assert.Equal(t, day(2025, 3, 1), txns[0].Date)

	assert.Equal(t, "ACME CONSULTING INVOICE 1042", txns[3].Description)
	assert.Equal(t, model.TxCredit, txns[3].Type)
	assert.Equal(t, "3500.00", txns[3].Amount.StringFixed(2))

	// 01/22/2025 can only be month-first.
	assert.Equal(t, day(2025, 1, 22), txns[5].Date)
}

func TestParseMapping(t *testing.T) {
	m, err := ParseMapping("date=0, desc=3, amount=1, ref=4")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Date)
	assert.Equal(t, 3, m.Description)
	assert.Equal(t, 1, m.Amount)
	assert.Equal(t, 4, m.Reference)
	assert.Equal(t, -1, m.Type)
	assert.Equal(t, "date=0,description=3,amount=1,reference=4", m.String())

	m, err = ParseMapping("date=0,description=1,credit=2,debit=3")
	require.NoError(t, err)
	assert.True(t, m.SplitAmounts())

	_, err = ParseMapping("date=0,description=1")
	assert.Error(t, err)
	_, err = ParseMapping("date=zero")
	assert.Error(t, err)
	_, err = ParseMapping("when=0")
	assert.Error(t, err)
}

func TestDetectLayout(t *testing.T) {
	m, ok := DetectLayout("Transaction Date,Memo,Value\n2024-01-01,x,1\n")
	require.True(t, ok)
	assert.Equal(t, 0, m.Date)
	assert.Equal(t, 1, m.Description)
	assert.Equal(t, 2, m.Amount)

	_, ok = DetectLayout("")
	assert.False(t, ok)
}

func TestParse_ByteOrderMark(t *testing.T) {
	txns := Parse("\ufeffDate,Description,Amount\n2024-01-15,Coffee,-3.50\n", nil)
	require.Len(t, txns, 1)
	assert.Equal(t, "Coffee", txns[0].Description)
}
