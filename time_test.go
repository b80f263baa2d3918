package identity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	identity "github.com/goliatone/go-identity"
)

func TestIsOutsideThresholdPeriod(t *testing.T) {
	tests := []struct {
		name          string
		inputTime     time.Time
		thresholdExpr string
		expected      bool
		expectErr     bool
	}{
		{
			name:          "within 1 hour threshold",
			inputTime:     time.Now().Add(-30 * time.Minute),
			thresholdExpr: "1h",
			expected:      false,
		},
		{
			name:          "outside 1 hour threshold",
			inputTime:     time.Now().Add(-90 * time.Minute),
			thresholdExpr: "1h",
			expected:      true,
		},
		{
			name:          "outside 24 hour cooldown",
			inputTime:     time.Now().Add(-25 * time.Hour),
			thresholdExpr: "24h",
			expected:      true,
		},
		{
			name:          "future timestamp",
			inputTime:     time.Now().Add(10 * time.Minute),
			thresholdExpr: "1h",
			expected:      false,
		},
		{
			name:          "invalid pattern",
			inputTime:     time.Now(),
			thresholdExpr: "one hour",
			expectErr:     true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := identity.IsOutsideThresholdPeriod(tc.inputTime, tc.thresholdExpr)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
