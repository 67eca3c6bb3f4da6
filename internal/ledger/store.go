// Package ledger stores imported transactions in <root>/ledger.csv together
// with the fingerprint computed at import time.
package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/dedup"
	"github.com/cleared-dev/stmtimport/internal/model"
)

// FileName is the ledger file inside a project directory.
const FileName = "ledger.csv"

// Entry is one imported transaction.
type Entry struct {
	ImportID    string
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Type        model.TxType
	ReferenceID *string
	Fingerprint string
	Source      string
}

// NewEntry records txn as imported by importID from source.
func NewEntry(importID, source string, txn model.ParsedTransaction) Entry {
	return Entry{
		ImportID:    importID,
		Date:        txn.Date,
		Description: txn.Description,
		Amount:      txn.Amount,
		Type:        txn.Type,
		ReferenceID: txn.ReferenceID,
		Fingerprint: dedup.FingerprintOf(txn),
		Source:      source,
	}
}

// Existing projects the entry for deduplication. The stored fingerprint is
// used as is.
func (e Entry) Existing() model.ExistingTransaction {
	return model.ExistingTransaction{
		ReferenceID: e.ReferenceID,
		Fingerprint: e.Fingerprint,
		Date:        e.Date,
		Amount:      e.Amount,
		Description: e.Description,
	}
}

// Store reads and appends the ledger of one project directory.
type Store struct {
	root string
}

// NewStore creates a Store rooted at repoRoot.
func NewStore(repoRoot string) *Store {
	return &Store{root: repoRoot}
}

// Path returns the ledger file path.
func (s *Store) Path() string {
	return filepath.Join(s.root, FileName)
}

// Init creates an empty ledger containing only the header. An existing
// ledger is left alone.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	f, err := os.OpenFile(s.Path(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	defer f.Close()

	if err := WriteEntries(f, nil); err != nil {
		return fmt.Errorf("writing ledger header: %w", err)
	}
	return nil
}

// Load returns every entry. A missing ledger is empty.
func (s *Store) Load() ([]Entry, error) {
	f, err := os.Open(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", s.Path(), err)
	}
	return entries, nil
}

// Existing returns the stored transactions in the form the deduplicator
// compares against.
func (s *Store) Existing() ([]model.ExistingTransaction, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	out := make([]model.ExistingTransaction, len(entries))
	for i, e := range entries {
		out[i] = e.Existing()
	}
	return out, nil
}

// Append adds entries, creating the file and header if needed.
func (s *Store) Append(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	path := s.Path()
	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendEntries(f, entries); err != nil {
		return fmt.Errorf("appending entries: %w", err)
	}
	return nil
}
