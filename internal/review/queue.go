// Package review keeps the queue of imported transactions that need a
// person to decide whether they are duplicates.
package review

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/dedup"
	"github.com/cleared-dev/stmtimport/internal/model"
)

// FileName is the queue file inside a project directory.
const FileName = "review-queue.csv"

// Status of a review item.
type Status string

// StatusPending is the status of every newly queued item.
const StatusPending Status = "pending"

// LowConfidenceReason is recorded for PDF lines the extractor was unsure of.
const LowConfidenceReason = "Low-confidence extraction from PDF statement"

// Item is one queued transaction.
type Item struct {
	ID                 string
	CreatedAt          time.Time
	ImportID           string
	Source             string
	Date               time.Time
	Description        string
	Amount             decimal.Decimal
	Type               model.TxType
	ReferenceID        *string
	MatchedDescription string
	MatchedDate        time.Time // zero when nothing was matched
	MatchedAmount      decimal.Decimal
	Reason             string
	Status             Status
}

// Transaction returns the incoming transaction the item was queued for.
func (it Item) Transaction() model.ParsedTransaction {
	return model.ParsedTransaction{
		Date:        it.Date,
		Description: it.Description,
		Amount:      it.Amount,
		Type:        it.Type,
		ReferenceID: it.ReferenceID,
	}
}

func newItem(importID, source string, now time.Time, txn model.ParsedTransaction, reason string) Item {
	return Item{
		ID:          uuid.NewString(),
		CreatedAt:   now.UTC().Truncate(time.Second),
		ImportID:    importID,
		Source:      source,
		Date:        txn.Date,
		Description: txn.Description,
		Amount:      txn.Amount,
		Type:        txn.Type,
		ReferenceID: txn.ReferenceID,
		Reason:      reason,
		Status:      StatusPending,
	}
}

// FromFlagged builds a pending item for a probable duplicate.
func FromFlagged(importID, source string, now time.Time, f dedup.FlaggedTransaction) Item {
	it := newItem(importID, source, now, f.Transaction, f.Reason)
	it.MatchedDescription = f.MatchedExisting.Description
	it.MatchedDate = f.MatchedExisting.Date
	it.MatchedAmount = f.MatchedExisting.Amount
	return it
}

// FromLowConfidence builds a pending item for an uncertain PDF extraction.
func FromLowConfidence(importID, source string, now time.Time, txn model.ParsedTransaction) Item {
	return newItem(importID, source, now, txn, LowConfidenceReason)
}

// Queue is the review queue of one project directory.
type Queue struct {
	root string
}

// NewQueue creates a Queue rooted at repoRoot.
func NewQueue(repoRoot string) *Queue {
	return &Queue{root: repoRoot}
}

// Path returns the queue file path.
func (q *Queue) Path() string {
	return filepath.Join(q.root, FileName)
}

// Add appends items, creating the file and header if needed.
func (q *Queue) Add(items []Item) error {
	if len(items) == 0 {
		return nil
	}
	if err := os.MkdirAll(q.root, 0o755); err != nil {
		return fmt.Errorf("creating review dir: %w", err)
	}

	path := q.Path()
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening review queue: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, it := range items {
		if err := cw.Write(MarshalItem(it)); err != nil {
			return fmt.Errorf("writing item %d: %w", i, err)
		}
	}
	return cw.Error()
}

// List returns every queued item, oldest first. A missing queue is empty.
func (q *Queue) List() ([]Item, error) {
	f, err := os.Open(q.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening review queue: %w", err)
	}
	defer f.Close()

	return readItems(f)
}

// Pending returns the items still awaiting a decision.
func (q *Queue) Pending() ([]Item, error) {
	items, err := q.List()
	if err != nil {
		return nil, err
	}
	var out []Item
	for _, it := range items {
		if it.Status == StatusPending {
			out = append(out, it)
		}
	}
	return out, nil
}

func readItems(r io.Reader) ([]Item, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading review queue CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	items := make([]Item, 0, len(records)-1)
	for i, rec := range records[1:] {
		it, err := UnmarshalItem(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		items = append(items, it)
	}
	return items, nil
}
