package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// Fingerprint returns the SHA-256 hex digest of
// "YYYY-MM-DD|<amount to 2 places>|<lowercased trimmed description>".
//
// Stored fingerprints from earlier imports were computed with exactly this
// scheme; any change breaks duplicate detection against existing data.
func Fingerprint(date time.Time, amount decimal.Decimal, description string) string {
	input := date.Format(time.DateOnly) + "|" + amount.StringFixed(2) + "|" + strings.ToLower(strings.TrimSpace(description))
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// FingerprintOf fingerprints a parsed transaction.
func FingerprintOf(t model.ParsedTransaction) string {
	return Fingerprint(t.Date, t.Amount, t.Description)
}

// ToExisting projects a parsed transaction into the shape stored for future
// deduplication, computing its fingerprint.
func ToExisting(t model.ParsedTransaction) model.ExistingTransaction {
	return model.ExistingTransaction{
		ReferenceID: t.ReferenceID,
		Fingerprint: FingerprintOf(t),
		Date:        t.Date,
		Amount:      t.Amount,
		Description: t.Description,
	}
}
