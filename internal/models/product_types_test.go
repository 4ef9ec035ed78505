package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeSlugNormalizesDisplayNames(t *testing.T) {
	assert.Equal(t, "deep-insight-pack", MakeSlug("Deep Insight Pack"))
	assert.Equal(t, "deep-insight-pack", MakeSlug("deep-insight-pack"))
	assert.Equal(t, "luck-guide-monthly", MakeSlug("  Luck Guide Monthly "))
}

func TestIsTrial(t *testing.T) {
	trial := Product{Mode: ProductModeSubscription, TrialDays: 7}
	assert.True(t, trial.IsTrial())

	noTrial := Product{Mode: ProductModeSubscription}
	assert.False(t, noTrial.IsTrial())

	oneTime := Product{Mode: ProductModePayment, TrialDays: 7}
	assert.False(t, oneTime.IsTrial())
}
