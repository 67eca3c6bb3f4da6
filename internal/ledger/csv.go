package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// Header is the CSV header for ledger.csv.
const Header = "import_id,date,description,amount,type,reference,fingerprint,source"

const (
	numFields      = 8
	dateFormat     = "2006-01-02"
	colImportID    = 0
	colDate        = 1
	colDesc        = 2
	colAmount      = 3
	colType        = 4
	colRef         = 5
	colFingerprint = 6
	colSource      = 7
)

// ReadEntries reads all entries from a ledger.csv reader.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes entries to w, header first.
func WriteEntries(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendEntries writes entries to w without a header.
func AppendEntries(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colImportID] = e.ImportID
	row[colDate] = e.Date.Format(dateFormat)
	row[colDesc] = e.Description
	row[colAmount] = e.Amount.StringFixed(2)
	row[colType] = string(e.Type)
	if e.ReferenceID != nil {
		row[colRef] = *e.ReferenceID
	}
	row[colFingerprint] = e.Fingerprint
	row[colSource] = e.Source
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	typ := model.TxType(record[colType])
	if !typ.Valid() {
		return Entry{}, fmt.Errorf("invalid type %q", record[colType])
	}

	return Entry{
		ImportID:    record[colImportID],
		Date:        date,
		Description: record[colDesc],
		Amount:      amount,
		Type:        typ,
		ReferenceID: model.OptionalString(record[colRef]),
		Fingerprint: record[colFingerprint],
		Source:      record[colSource],
	}, nil
}
