package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/stmtimport/internal/dedup"
	"github.com/cleared-dev/stmtimport/internal/importlog"
	"github.com/cleared-dev/stmtimport/internal/ledger"
	"github.com/cleared-dev/stmtimport/internal/logger"
	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/review"
)

// Options control a Service.
type Options struct {
	Dedup         dedup.Options
	DryRun        bool
	MoveProcessed bool
}

// Summary reports the outcome of importing one file.
type Summary struct {
	ImportID      string
	File          string
	Format        string
	Layout        string
	NoLayout      bool
	SkippedRows   int
	Parsed        int
	Result        dedup.Result
	LowConfidence []model.ParsedTransaction
	DryRun        bool
}

// Service imports statement files into one project directory.
type Service struct {
	repoRoot string
	registry *Registry
	ledger   *ledger.Store
	review   *review.Queue
	opts     Options
	now      func() time.Time
}

// NewService creates an import Service for repoRoot.
func NewService(repoRoot string, registry *Registry, opts Options) *Service {
	return &Service{
		repoRoot: repoRoot,
		registry: registry,
		ledger:   ledger.NewStore(repoRoot),
		review:   review.NewQueue(repoRoot),
		opts:     opts,
		now:      time.Now,
	}
}

// ImportFile parses path, deduplicates against the ledger, and records new
// transactions, review items and an import log entry. In dry-run mode
// nothing is written.
func (s *Service) ImportFile(ctx context.Context, path string) (Summary, error) {
	log := logger.FromContext(ctx).With("file", filepath.Base(path))

	p, err := s.registry.ForPath(path)
	if err != nil {
		return Summary{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("reading %s: %w", path, err)
	}

	parsed, err := p.Parse(ctx, data)
	if err != nil {
		return Summary{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if parsed.SkippedRows > 0 {
		log.Debug("skipped rows that are not transactions", "rows", parsed.SkippedRows)
	}

	existing, err := s.ledger.Existing()
	if err != nil {
		return Summary{}, fmt.Errorf("loading ledger: %w", err)
	}

	sum := Summary{
		ImportID:      uuid.NewString(),
		File:          filepath.Base(path),
		Format:        p.Format(),
		Layout:        parsed.Layout,
		NoLayout:      parsed.NoLayout,
		SkippedRows:   parsed.SkippedRows,
		Parsed:        len(parsed.Transactions) + len(parsed.LowConfidence),
		Result:        dedup.DeduplicateWithOptions(parsed.Transactions, existing, s.opts.Dedup),
		LowConfidence: parsed.LowConfidence,
		DryRun:        s.opts.DryRun,
	}

	if !s.opts.DryRun {
		if err := s.record(sum); err != nil {
			return Summary{}, err
		}
	}

	log.Info("imported statement",
		"import_id", sum.ImportID,
		"format", sum.Format,
		"parsed", sum.Parsed,
		"new", len(sum.Result.New),
		"skipped", len(sum.Result.Skipped),
		"flagged", len(sum.Result.Flagged),
		"low_confidence", len(sum.LowConfidence),
		"dry_run", sum.DryRun,
	)
	return sum, nil
}

// record persists an import. The ledger is written last, so ledger rows
// always have a matching import log line.
func (s *Service) record(sum Summary) error {
	now := s.now()

	items := make([]review.Item, 0, len(sum.Result.Flagged)+len(sum.LowConfidence))
	for _, f := range sum.Result.Flagged {
		items = append(items, review.FromFlagged(sum.ImportID, sum.File, now, f))
	}
	for _, txn := range sum.LowConfidence {
		items = append(items, review.FromLowConfidence(sum.ImportID, sum.File, now, txn))
	}
	if err := s.review.Add(items); err != nil {
		return fmt.Errorf("writing review queue: %w", err)
	}

	entry := importlog.Entry{
		Timestamp:     now,
		ImportID:      sum.ImportID,
		File:          sum.File,
		Format:        sum.Format,
		Parsed:        sum.Parsed,
		New:           len(sum.Result.New),
		Skipped:       len(sum.Result.Skipped),
		Flagged:       len(sum.Result.Flagged),
		LowConfidence: len(sum.LowConfidence),
	}
	if err := importlog.Append(s.repoRoot, []importlog.Entry{entry}); err != nil {
		return fmt.Errorf("writing import log: %w", err)
	}

	entries := make([]ledger.Entry, len(sum.Result.New))
	for i, txn := range sum.Result.New {
		entries[i] = ledger.NewEntry(sum.ImportID, sum.File, txn)
	}
	if err := s.ledger.Append(entries); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}

// ImportPending imports every supported file in the import directory, in
// name order. Files that import cleanly are moved to import/processed/ when
// MoveProcessed is set. A failing file does not stop the others; all
// failures are returned joined.
func (s *Service) ImportPending(ctx context.Context) ([]Summary, error) {
	files, err := s.registry.Scan(s.repoRoot)
	if err != nil {
		return nil, err
	}

	var (
		sums []Summary
		errs []error
	)
	for _, f := range files {
		sum, err := s.ImportFile(ctx, f.Path)
		if err != nil {
			logger.FromContext(ctx).Error("import failed", "file", f.Name, "error", err)
			errs = append(errs, err)
			continue
		}
		sums = append(sums, sum)

		if s.opts.MoveProcessed && !s.opts.DryRun {
			if err := MarkProcessed(s.repoRoot, f.Name); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return sums, errors.Join(errs...)
}
