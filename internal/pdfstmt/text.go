package pdfstmt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor turns raw PDF bytes into plain text.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// LibraryText extracts text with the ledongthuc/pdf reader. Rows are
// rebuilt per page; when that yields nothing the whole-document plain text
// is used instead. Pages are separated by a blank line.
type LibraryText struct{}

// ExtractText implements TextExtractor.
func (LibraryText) ExtractText(data []byte) (text string, err error) {
	// The library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pdf: library panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	pages := textByRow(r)
	if strings.TrimSpace(strings.Join(pages, "")) != "" {
		return strings.Join(pages, "\n\n"), nil
	}
	return plainText(r), nil
}

func textByRow(r *pdf.Reader) []string {
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func plainText(r *pdf.Reader) string {
	rd, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	b, err := io.ReadAll(rd)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
