// Package importer selects a statement parser by file extension and runs
// parsed transactions through deduplication into the project's ledger.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cleared-dev/stmtimport/internal/csvstmt"
	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/pdfstmt"
)

// ErrUnsupportedFormat is returned for files no registered parser accepts.
var ErrUnsupportedFormat = errors.New("unsupported statement format")

// Parsed is the output of one parser run.
type Parsed struct {
	Transactions  []model.ParsedTransaction
	LowConfidence []model.ParsedTransaction

	// Layout describes the detected column layout of tabular formats.
	// NoLayout is set when none could be found.
	Layout      string
	NoLayout    bool
	SkippedRows int
}

// Parser converts a statement file into canonical transactions.
type Parser interface {
	Parse(ctx context.Context, data []byte) (Parsed, error)
	Format() string
	Extensions() []string
}

// Registry maps lowercased file extensions to parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser for each of its extensions. Panics on a duplicate extension.
func (r *Registry) Register(p Parser) {
	for _, ext := range p.Extensions() {
		key := strings.ToLower(ext)
		if _, ok := r.parsers[key]; ok {
			panic("duplicate parser extension: " + key)
		}
		r.parsers[key] = p
	}
}

// Get returns the parser for an extension such as ".csv", or nil.
func (r *Registry) Get(ext string) Parser {
	return r.parsers[strings.ToLower(ext)]
}

// ForPath returns the parser for a file name.
func (r *Registry) ForPath(path string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if p := r.Get(ext); p != nil {
		return p, nil
	}
	if ext == ".pdf" {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), pdfstmt.ErrNoExtractor)
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// DefaultRegistry returns a registry with all built-in parsers. PDF support
// is registered only when extractor is non-nil. manual, when non-nil, forces
// the column layout of CSV and XLSX files.
func DefaultRegistry(extractor pdfstmt.Extractor, manual *csvstmt.ColumnMapping) *Registry {
	r := NewRegistry()
	r.Register(&CSVParser{Manual: manual})
	r.Register(&OFXParser{})
	r.Register(&XLSXParser{Manual: manual})
	if extractor != nil {
		r.Register(&PDFParser{pdf: pdfstmt.NewParser(extractor)})
	}
	return r
}

// importDir is the subdirectory for statement files awaiting import.
const importDir = "import"

// processedDir is the subdirectory for imported statement files.
const processedDir = "import/processed"

// Scan returns files in <repoRoot>/import/ that a registered parser accepts.
func (r *Registry) Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if r.Get(filepath.Ext(e.Name())) == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
