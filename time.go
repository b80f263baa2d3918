package identity

import (
	"time"

	"github.com/goliatone/go-errors"
)

// IsOutsideThresholdPeriod reports whether t happened longer ago than the
// given duration pattern, e.g. "24h" or "30m".
func IsOutsideThresholdPeriod(t time.Time, pattern string) (bool, error) {
	threshold, err := time.ParseDuration(pattern)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryBadInput, "invalid threshold duration pattern").
			WithMetadata(map[string]any{"pattern": pattern})
	}

	return time.Since(t) > threshold, nil
}
