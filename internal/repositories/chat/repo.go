// Package chat holds the gorm-backed store client for the messaging core.
// Repositories are per-statement only: no multi-statement transactions, so
// callers treat secondary effects as best-effort and repairable.
package chat

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// isDuplicateKey reports a unique-constraint violation. Requires the gorm
// connection to be opened with TranslateError enabled.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func toStringArray(ids []string) pq.StringArray {
	if ids == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(ids)
}
