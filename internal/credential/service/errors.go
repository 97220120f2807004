package service

import (
	"fmt"

	"github.com/aussiebroadwan/credkit/internal/credential/domain"
)

// storeUnavailable folds a cache failure into the fail-closed taxonomy
// error. A store outage must never look like a miss or a pass.
func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
