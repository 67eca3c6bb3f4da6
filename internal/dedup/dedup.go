// Package dedup reconciles freshly parsed statement transactions against
// transactions that were already imported.
//
// Each incoming transaction is resolved by the first layer that matches:
// bank reference ID, exact fingerprint, then a fuzzy same-day comparison.
// Exact matches are skipped; fuzzy matches are flagged for a person to
// confirm. Incoming transactions are never compared with each other.
package dedup

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// FlaggedTransaction is a probable duplicate that needs human review.
type FlaggedTransaction struct {
	Transaction     model.ParsedTransaction
	MatchedExisting model.ExistingTransaction
	Reason          string
}

// Result partitions one incoming batch.
type Result struct {
	New     []model.ParsedTransaction
	Skipped []model.ParsedTransaction
	Flagged []FlaggedTransaction
}

// Options tune the fuzzy layer.
type Options struct {
	Tolerance     decimal.Decimal // share of the larger amount, e.g. 0.05
	MinTolerance  decimal.Decimal // absolute floor, e.g. 1.00
	MinSimilarity float64         // description similarity threshold
}

// DefaultOptions returns the standard fuzzy-match thresholds:
// amounts within max($1, 5%) and description similarity of at least 0.6.
func DefaultOptions() Options {
	return Options{
		Tolerance:     decimal.RequireFromString("0.05"),
		MinTolerance:  decimal.NewFromInt(1),
		MinSimilarity: 0.6,
	}
}

// Deduplicate partitions incoming against existing with DefaultOptions.
func Deduplicate(incoming []model.ParsedTransaction, existing []model.ExistingTransaction) Result {
	return DeduplicateWithOptions(incoming, existing, DefaultOptions())
}

// DeduplicateWithOptions partitions incoming against existing.
func DeduplicateWithOptions(incoming []model.ParsedTransaction, existing []model.ExistingTransaction, opts Options) Result {
	refs := make(map[string]struct{}, len(existing))
	prints := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		if e.ReferenceID != nil {
			refs[*e.ReferenceID] = struct{}{}
		}
		if e.Fingerprint != "" {
			prints[e.Fingerprint] = struct{}{}
		}
	}

	var res Result
	for _, txn := range incoming {
		if txn.ReferenceID != nil {
			if _, ok := refs[*txn.ReferenceID]; ok {
				res.Skipped = append(res.Skipped, txn)
				continue
			}
		}
		if _, ok := prints[FingerprintOf(txn)]; ok {
			res.Skipped = append(res.Skipped, txn)
			continue
		}
		if match, score, ok := fuzzyMatch(txn, existing, opts); ok {
			res.Flagged = append(res.Flagged, FlaggedTransaction{
				Transaction:     txn,
				MatchedExisting: match,
				Reason: fmt.Sprintf("Possible duplicate of %q on %s for %s (description %.0f%% similar)",
					match.Description, match.Date.Format("2006-01-02"), match.Amount.StringFixed(2), score*100),
			})
			continue
		}
		res.New = append(res.New, txn)
	}
	return res
}

// fuzzyMatch returns the first existing transaction on the same calendar
// day with a close amount and a similar description.
func fuzzyMatch(txn model.ParsedTransaction, existing []model.ExistingTransaction, opts Options) (model.ExistingTransaction, float64, bool) {
	day := txn.Date.Format("2006-01-02")
	for _, e := range existing {
		if e.Date.Format("2006-01-02") != day {
			continue
		}
		if !withinTolerance(txn.Amount, e.Amount, opts) {
			continue
		}
		if score := Similarity(txn.Description, e.Description); score >= opts.MinSimilarity {
			return e, score, true
		}
	}
	return model.ExistingTransaction{}, 0, false
}

func withinTolerance(a, b decimal.Decimal, opts Options) bool {
	a, b = a.Abs(), b.Abs()
	tol := decimal.Max(a, b).Mul(opts.Tolerance)
	tol = decimal.Max(tol, opts.MinTolerance)
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}
