package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/aiextract"
	"github.com/cleared-dev/stmtimport/internal/config"
	"github.com/cleared-dev/stmtimport/internal/csvstmt"
	"github.com/cleared-dev/stmtimport/internal/gitops"
	"github.com/cleared-dev/stmtimport/internal/importer"
	"github.com/cleared-dev/stmtimport/internal/logger"
	"github.com/cleared-dev/stmtimport/internal/pdfstmt"
)

type importFlags struct {
	repoDir    string
	dryRun     bool
	showLayout bool
	mapping    string
}

func newImportCommand() *cobra.Command {
	var f importFlags

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import statement files (CSV, OFX, QFX, XLSX, PDF)",
		Long: `Import statement files into the project ledger.

With no arguments every supported file in <repo>/import/ is imported and
moved to import/processed/. Transactions already in the ledger are skipped;
probable duplicates are added to the review queue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(f.repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), absDir, args, f)
		},
	}

	cmd.Flags().StringVar(&f.repoDir, "repo", ".", "project directory")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "report what would be imported without writing anything")
	cmd.Flags().BoolVar(&f.showLayout, "show-layout", false, "print the detected column layout of CSV and XLSX files")
	cmd.Flags().StringVar(&f.mapping, "mapping", "", `force a CSV/XLSX column layout, e.g. "date=0,description=1,amount=2"`)

	return cmd
}

func runImport(ctx context.Context, out, errOut io.Writer, repoRoot string, files []string, f importFlags) error {
	cfg, err := config.LoadDir(repoRoot)
	if err != nil {
		return err
	}
	log := logger.New(errOut, cfg.Log.Level, cfg.Log.Format)
	ctx = logger.ToContext(ctx, log)

	manual, err := manualMapping(cfg, f.mapping)
	if err != nil {
		return err
	}

	svc := importer.NewService(repoRoot, importer.DefaultRegistry(newExtractor(repoRoot, cfg, log), manual), importer.Options{
		Dedup:         cfg.DedupOptions(),
		DryRun:        f.dryRun,
		MoveProcessed: cfg.Import.MoveProcessed,
	})

	var (
		sums []importer.Summary
		errs []error
	)
	if len(files) == 0 {
		sums, err = svc.ImportPending(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	} else {
		for _, path := range files {
			sum, err := svc.ImportFile(ctx, path)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			sums = append(sums, sum)
		}
	}

	if len(sums) == 0 && len(errs) == 0 {
		fmt.Fprintln(out, "No statement files to import.")
		return nil
	}

	var totalNew, totalFlagged int
	for _, s := range sums {
		printSummary(out, s, f.showLayout)
		totalNew += len(s.Result.New)
		totalFlagged += len(s.Result.Flagged) + len(s.LowConfidence)
	}

	if f.dryRun {
		fmt.Fprintln(out, "Dry run: nothing was written.")
	} else if cfg.Git.AutoCommit && gitops.IsRepo(repoRoot) && len(sums) > 0 {
		msg := fmt.Sprintf("import: %d file(s), %d new, %d for review", len(sums), totalNew, totalFlagged)
		hash, err := gitops.CommitAll(repoRoot, msg, gitAuthor(cfg))
		if err != nil {
			errs = append(errs, fmt.Errorf("committing import: %w", err))
		} else if hash != "" {
			fmt.Fprintf(out, "Committed %s\n", hash)
		}
	}

	return errors.Join(errs...)
}

func manualMapping(cfg *config.Config, flag string) (*csvstmt.ColumnMapping, error) {
	raw := flag
	if raw == "" {
		raw = cfg.Import.Mapping
	}
	if raw == "" {
		return nil, nil
	}
	m, err := csvstmt.ParseMapping(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid mapping: %w", err)
	}
	return &m, nil
}

// newExtractor returns the PDF extractor, or nil when AI extraction is off
// or has no API key. Without one, PDF files are reported as unsupported.
func newExtractor(repoRoot string, cfg *config.Config, log *slog.Logger) pdfstmt.Extractor {
	if !cfg.AI.Enabled {
		return nil
	}
	key, err := cfg.APIKey(repoRoot)
	if err != nil {
		log.Warn("PDF import disabled", "error", err)
		return nil
	}
	client, err := aiextract.New(aiextract.Options{
		BaseURL:  cfg.AI.BaseURL,
		APIKey:   key,
		Model:    cfg.AI.Model,
		JSONMode: cfg.AI.JSONMode,
	})
	if err != nil {
		log.Warn("PDF import disabled", "error", err)
		return nil
	}
	ttl := cfg.AI.CacheTTL
	if ttl <= 0 {
		ttl = aiextract.DefaultCacheExpiration
	}
	return aiextract.NewCached(client, ttl)
}

func printSummary(out io.Writer, s importer.Summary, showLayout bool) {
	fmt.Fprintf(out, "%s (%s): %d parsed, %d new, %d skipped, %d flagged",
		s.File, s.Format, s.Parsed, len(s.Result.New), len(s.Result.Skipped), len(s.Result.Flagged))
	if len(s.LowConfidence) > 0 {
		fmt.Fprintf(out, ", %d low confidence", len(s.LowConfidence))
	}
	fmt.Fprintln(out)

	if s.NoLayout {
		fmt.Fprintln(out, "  could not detect a transaction layout (try --mapping)")
	}
	if showLayout && s.Layout != "" {
		fmt.Fprintf(out, "  layout %s\n", s.Layout)
	}
	for _, fl := range s.Result.Flagged {
		txn := fl.Transaction
		fmt.Fprintf(out, "  review: %s %s %s: %s\n", txn.Date.Format("2006-01-02"), txn.Amount.StringFixed(2), txn.Description, fl.Reason)
	}
	for _, txn := range s.LowConfidence {
		fmt.Fprintf(out, "  review: %s %s %s: low confidence\n", txn.Date.Format("2006-01-02"), txn.Amount.StringFixed(2), txn.Description)
	}
}
