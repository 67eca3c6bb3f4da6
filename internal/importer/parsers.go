package importer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cleared-dev/stmtimport/internal/csvstmt"
	"github.com/cleared-dev/stmtimport/internal/ofx"
	"github.com/cleared-dev/stmtimport/internal/pdfstmt"
)

// CSVParser reads comma-separated exports with any column layout.
type CSVParser struct {
	Manual *csvstmt.ColumnMapping
}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Extensions returns the file extensions handled.
func (p *CSVParser) Extensions() []string { return []string{".csv"} }

// Parse implements Parser. An undetectable layout is not an error.
func (p *CSVParser) Parse(_ context.Context, data []byte) (Parsed, error) {
	return fromReport(csvstmt.Analyze(string(data), p.Manual)), nil
}

// XLSXParser reads the first sheet of an Excel export.
type XLSXParser struct {
	Manual *csvstmt.ColumnMapping
}

// Format returns the parser name.
func (p *XLSXParser) Format() string { return "xlsx" }

// Extensions returns the file extensions handled.
func (p *XLSXParser) Extensions() []string { return []string{".xlsx"} }

// Parse implements Parser.
func (p *XLSXParser) Parse(_ context.Context, data []byte) (Parsed, error) {
	rep, err := csvstmt.AnalyzeXLSX(bytes.NewReader(data), p.Manual)
	if err != nil {
		return Parsed{}, fmt.Errorf("parsing xlsx: %w", err)
	}
	return fromReport(rep), nil
}

func fromReport(rep csvstmt.Report) Parsed {
	if !rep.Detected {
		return Parsed{NoLayout: true}
	}
	return Parsed{
		Transactions: rep.Transactions,
		Layout:       rep.Strategy + ": " + rep.Mapping.String(),
		SkippedRows:  rep.SkippedRows,
	}
}

// OFXParser reads OFX and QFX downloads.
type OFXParser struct{}

// Format returns the parser name.
func (p *OFXParser) Format() string { return "ofx" }

// Extensions returns the file extensions handled.
func (p *OFXParser) Extensions() []string { return []string{".ofx", ".qfx"} }

// Parse implements Parser.
func (p *OFXParser) Parse(_ context.Context, data []byte) (Parsed, error) {
	return Parsed{Transactions: ofx.Parse(string(data))}, nil
}

// PDFParser reads PDF statements through an AI extractor.
type PDFParser struct {
	pdf *pdfstmt.Parser
}

// NewPDFParser wraps a configured pdfstmt.Parser.
func NewPDFParser(p *pdfstmt.Parser) *PDFParser {
	return &PDFParser{pdf: p}
}

// Format returns the parser name.
func (p *PDFParser) Format() string { return "pdf" }

// Extensions returns the file extensions handled.
func (p *PDFParser) Extensions() []string { return []string{".pdf"} }

// Parse implements Parser.
func (p *PDFParser) Parse(ctx context.Context, data []byte) (Parsed, error) {
	res, err := p.pdf.Parse(ctx, data)
	if err != nil {
		return Parsed{}, fmt.Errorf("parsing pdf: %w", err)
	}
	return Parsed{Transactions: res.Transactions, LowConfidence: res.LowConfidence}, nil
}
