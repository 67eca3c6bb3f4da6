package review

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// Header is the CSV header for review-queue.csv.
const Header = "id,created_at,import_id,source,date,description,amount,type,reference,matched_description,matched_date,matched_amount,reason,status"

const (
	numFields    = 14
	dateFormat   = "2006-01-02"
	colID        = 0
	colCreatedAt = 1
	colImportID  = 2
	colSource    = 3
	colDate      = 4
	colDesc      = 5
	colAmount    = 6
	colType      = 7
	colRef       = 8
	colMatchDesc = 9
	colMatchDate = 10
	colMatchAmt  = 11
	colReason    = 12
	colStatus    = 13
)

// MarshalItem converts an Item to a CSV row.
func MarshalItem(it Item) []string {
	row := make([]string, numFields)
	row[colID] = it.ID
	row[colCreatedAt] = it.CreatedAt.Format(time.RFC3339)
	row[colImportID] = it.ImportID
	row[colSource] = it.Source
	row[colDate] = it.Date.Format(dateFormat)
	row[colDesc] = it.Description
	row[colAmount] = it.Amount.StringFixed(2)
	row[colType] = string(it.Type)
	if it.ReferenceID != nil {
		row[colRef] = *it.ReferenceID
	}
	row[colMatchDesc] = it.MatchedDescription
	if !it.MatchedDate.IsZero() {
		row[colMatchDate] = it.MatchedDate.Format(dateFormat)
		row[colMatchAmt] = it.MatchedAmount.StringFixed(2)
	}
	row[colReason] = it.Reason
	row[colStatus] = string(it.Status)
	return row
}

// UnmarshalItem converts a CSV row to an Item.
func UnmarshalItem(record []string) (Item, error) {
	if len(record) != numFields {
		return Item{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	created, err := time.Parse(time.RFC3339, record[colCreatedAt])
	if err != nil {
		return Item{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
	}
	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return Item{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Item{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	it := Item{
		ID:                 record[colID],
		CreatedAt:          created,
		ImportID:           record[colImportID],
		Source:             record[colSource],
		Date:               date,
		Description:        record[colDesc],
		Amount:             amount,
		Type:               model.TxType(record[colType]),
		ReferenceID:        model.OptionalString(record[colRef]),
		MatchedDescription: record[colMatchDesc],
		Reason:             record[colReason],
		Status:             Status(record[colStatus]),
	}

	if record[colMatchDate] != "" {
		it.MatchedDate, err = time.Parse(dateFormat, record[colMatchDate])
		if err != nil {
			return Item{}, fmt.Errorf("parsing matched_date %q: %w", record[colMatchDate], err)
		}
	}
	if record[colMatchAmt] != "" {
		it.MatchedAmount, err = decimal.NewFromString(record[colMatchAmt])
		if err != nil {
			return Item{}, fmt.Errorf("parsing matched_amount %q: %w", record[colMatchAmt], err)
		}
	}
	return it, nil
}
