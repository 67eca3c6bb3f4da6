package csvstmt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cleared-dev/stmtimport/internal/datefmt"
)

// ColumnMapping assigns CSV column indices to transaction fields.
// Unused columns are -1. Either Amount or both Credit and Debit are set.
type ColumnMapping struct {
	Date        int `yaml:"date"`
	Description int `yaml:"description"`
	Amount      int `yaml:"amount"`
	Credit      int `yaml:"credit"`
	Debit       int `yaml:"debit"`
	Type        int `yaml:"type"`
	Reference   int `yaml:"reference"`
}

// NewMapping returns a mapping with every column unset.
func NewMapping() ColumnMapping {
	return ColumnMapping{Date: -1, Description: -1, Amount: -1, Credit: -1, Debit: -1, Type: -1, Reference: -1}
}

// SplitAmounts reports whether money in and out live in separate columns.
func (m ColumnMapping) SplitAmounts() bool {
	return m.Amount < 0 && m.Credit >= 0 && m.Debit >= 0
}

// Usable reports whether the mapping has enough columns to decode rows.
func (m ColumnMapping) Usable() bool {
	return m.Date >= 0 && m.Description >= 0 && (m.Amount >= 0 || (m.Credit >= 0 && m.Debit >= 0))
}

func (m ColumnMapping) String() string {
	parts := []string{
		"date=" + strconv.Itoa(m.Date),
		"description=" + strconv.Itoa(m.Description),
	}
	if m.SplitAmounts() {
		parts = append(parts, "credit="+strconv.Itoa(m.Credit), "debit="+strconv.Itoa(m.Debit))
	} else {
		parts = append(parts, "amount="+strconv.Itoa(m.Amount))
	}
	if m.Type >= 0 {
		parts = append(parts, "type="+strconv.Itoa(m.Type))
	}
	if m.Reference >= 0 {
		parts = append(parts, "reference="+strconv.Itoa(m.Reference))
	}
	return strings.Join(parts, ",")
}

// ParseMapping reads a mapping written as "date=0,description=1,amount=2".
// Keys may be abbreviated: desc, ref.
func ParseMapping(s string) (ColumnMapping, error) {
	m := NewMapping()
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return ColumnMapping{}, fmt.Errorf("mapping entry %q: expected key=index", part)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || idx < 0 {
			return ColumnMapping{}, fmt.Errorf("mapping entry %q: invalid column index", part)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "date":
			m.Date = idx
		case "description", "desc":
			m.Description = idx
		case "amount":
			m.Amount = idx
		case "credit":
			m.Credit = idx
		case "debit":
			m.Debit = idx
		case "type":
			m.Type = idx
		case "reference", "ref":
			m.Reference = idx
		default:
			return ColumnMapping{}, fmt.Errorf("mapping entry %q: unknown field %q", part, key)
		}
	}
	if !m.Usable() {
		return ColumnMapping{}, fmt.Errorf("mapping %q needs date, description and amount (or credit and debit)", s)
	}
	return m, nil
}

// Strategy names reported by Analyze.
const (
	StrategyManual  = "manual"
	StrategyHeader  = "header"
	StrategyContent = "content"
)

// layout is the outcome of one successful detection strategy.
type layout struct {
	mapping    ColumnMapping
	headerRows int
	strategy   string
}

// strategy inspects the rows of a file and proposes a layout.
type strategy func(rows [][]string) (layout, bool)

// detect runs the strategies in order; the first that succeeds wins.
func detect(rows [][]string, manual *ColumnMapping) (layout, bool) {
	if len(rows) == 0 {
		return layout{}, false
	}
	var chain []strategy
	if manual != nil {
		chain = append(chain, manualStrategy(*manual))
	}
	chain = append(chain, headerStrategy, contentStrategy)

	for _, s := range chain {
		if l, ok := s(rows); ok {
			return l, true
		}
	}
	return layout{}, false
}

// manualStrategy uses a caller-supplied mapping. The first row is skipped
// as a header unless its date cell already parses as a date.
func manualStrategy(m ColumnMapping) strategy {
	return func(rows [][]string) (layout, bool) {
		if !m.Usable() {
			return layout{}, false
		}
		header := 1
		if _, ok := datefmt.Parse(cell(rows[0], m.Date)); ok {
			header = 0
		}
		return layout{mapping: m, headerRows: header, strategy: StrategyManual}, true
	}
}

type field int

const (
	fieldDate field = iota
	fieldDescription
	fieldCredit
	fieldDebit
	fieldAmount
	fieldType
	fieldReference
	numFields
)

// headerSynonyms lists the header names recognized per field. Credit and
// debit precede amount so "Debit Amount" is claimed as a debit column.
var headerSynonyms = [numFields][]string{
	fieldDate:        {"date", "transaction date", "trans date", "posted", "posting date", "posted date", "value date", "booking date"},
	fieldDescription: {"description", "memo", "narrative", "payee", "details", "transaction description", "particulars", "merchant", "name"},
	fieldCredit:      {"credit", "deposit", "credits", "deposits", "money in", "paid in"},
	fieldDebit:       {"debit", "withdrawal", "debits", "withdrawals", "money out", "paid out"},
	fieldAmount:      {"amount", "value", "transaction amount", "amt"},
	fieldType:        {"type", "dr/cr", "transaction type", "cr/dr", "debit/credit"},
	fieldReference:   {"reference", "ref", "transaction id", "cheque", "check", "check number", "cheque number", "fitid"},
}

// headerStrategy matches the first row against known column names.
func headerStrategy(rows [][]string) (layout, bool) {
	header := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(c))
	}

	var found [numFields]int
	for f := range found {
		found[f] = -1
	}
	claimed := make([]bool, len(header))

	claim := func(f field, match func(cellText, syn string) bool) {
		if found[f] >= 0 {
			return
		}
		for _, syn := range headerSynonyms[f] {
			for i, h := range header {
				if !claimed[i] && h != "" && match(h, syn) {
					found[f] = i
					claimed[i] = true
					return
				}
			}
		}
	}

	// Exact matches for every field first, then substring fallbacks.
	for f := field(0); f < numFields; f++ {
		claim(f, func(h, syn string) bool { return h == syn })
	}
	for f := field(0); f < numFields; f++ {
		claim(f, strings.Contains)
	}

	m := NewMapping()
	m.Date = found[fieldDate]
	m.Description = found[fieldDescription]
	m.Type = found[fieldType]
	m.Reference = found[fieldReference]
	switch {
	case found[fieldAmount] >= 0:
		m.Amount = found[fieldAmount]
	case found[fieldCredit] >= 0 && found[fieldDebit] >= 0:
		m.Credit = found[fieldCredit]
		m.Debit = found[fieldDebit]
	}

	if !m.Usable() {
		return layout{}, false
	}
	return layout{mapping: m, headerRows: 1, strategy: StrategyHeader}, true
}

// shapeThreshold is the share of rows a column must match to be classified.
const shapeThreshold = 0.7

// contentStrategy classifies columns by the shape of their values when the
// file has no usable header row.
func contentStrategy(rows [][]string) (layout, bool) {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	total := float64(len(rows))

	m := NewMapping()
	var dense, sparse []int
	avgLen := make([]float64, cols)
	// shaped[c][i] is set when row i of column c holds an amount.
	shaped := make([][]bool, cols)
	filled := make([][]bool, cols)

	for c := 0; c < cols; c++ {
		shaped[c] = make([]bool, len(rows))
		filled[c] = make([]bool, len(rows))
		var dates, amounts, blanks, length int
		for i, r := range rows {
			v := cell(r, c)
			length += len(v)
			filled[c][i] = v != ""
			switch {
			case v == "":
				blanks++
			case datefmt.LooksLikeDate(v):
				dates++
			case looksLikeAmount(v):
				amounts++
				shaped[c][i] = true
			}
		}
		avgLen[c] = float64(length) / total

		if m.Date < 0 && float64(dates)/total >= shapeThreshold {
			m.Date = c
			continue
		}
		switch {
		case float64(amounts)/total >= shapeThreshold:
			dense = append(dense, c)
		case amounts > 0 && float64(amounts+blanks)/total >= shapeThreshold:
			sparse = append(sparse, c)
		}
	}
	if m.Date < 0 {
		return layout{}, false
	}

	amountCols := dense
	if len(dense) == 0 {
		amountCols = splitPair(sparse, shaped, filled, total)
	}
	if len(amountCols) == 0 {
		return layout{}, false
	}
	if len(amountCols) == 2 {
		m.Credit, m.Debit = amountCols[0], amountCols[1]
	} else {
		m.Amount = amountCols[0]
	}

	used := map[int]bool{m.Date: true}
	for _, c := range amountCols {
		used[c] = true
	}
	best := -1.0
	for c := 0; c < cols; c++ {
		if used[c] {
			continue
		}
		if avgLen[c] > best {
			best = avgLen[c]
			m.Description = c
		}
	}
	if m.Description < 0 {
		return layout{}, false
	}
	return layout{mapping: m, headerRows: 0, strategy: StrategyContent}, true
}

// splitPair finds two mostly blank columns that together form a money in /
// money out pair: no row fills both, and between them they hold an amount
// in enough rows.
func splitPair(candidates []int, shaped, filled [][]bool, total float64) []int {
	for i, a := range candidates {
		for _, b := range candidates[i+1:] {
			covered, exclusive := 0, true
			for r := range shaped[a] {
				if filled[a][r] && filled[b][r] {
					exclusive = false
					break
				}
				if shaped[a][r] || shaped[b][r] {
					covered++
				}
			}
			if exclusive && float64(covered)/total >= shapeThreshold {
				return []int{a, b}
			}
		}
	}
	return nil
}
