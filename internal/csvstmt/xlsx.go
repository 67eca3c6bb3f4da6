package csvstmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// ParseXLSX decodes the first sheet of an Excel workbook with the same
// layout detection and row rules as Parse. Only an unreadable workbook is
// an error.
func ParseXLSX(r io.Reader, manual *ColumnMapping) ([]model.ParsedTransaction, error) {
	rep, err := AnalyzeXLSX(r, manual)
	if err != nil {
		return nil, err
	}
	return rep.Transactions, nil
}

// AnalyzeXLSX is ParseXLSX with details about the detected layout.
func AnalyzeXLSX(r io.Reader, manual *ColumnMapping) (Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Report{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Report{Mapping: NewMapping()}, nil
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return Report{}, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	rows := make([][]string, 0, len(raw))
	for _, r := range raw {
		blank := true
		row := make([]string, len(r))
		for i, c := range r {
			row[i] = strings.TrimSpace(c)
			if row[i] != "" {
				blank = false
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return analyzeRows(rows, manual), nil
}
