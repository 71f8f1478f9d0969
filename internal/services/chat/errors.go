package chat

import (
	"errors"

	"gorm.io/gorm"

	"orgchat/pkg/apperrors"
)

// storeErr maps repository failures onto the service error taxonomy: a miss
// becomes NOT_FOUND, anything else a retryable STORE_UNAVAILABLE.
func storeErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.ErrStoreUnavailable(err)
}
