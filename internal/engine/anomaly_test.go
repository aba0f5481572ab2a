package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"SediPull/internal/domain/models"
)

func TestAnomalyPriceVolumeCollision(t *testing.T) {
	f := NewAnomalyFilter(testScoring())

	// Price field populated with the volume value.
	r := rec("1", "XYZ", "A", "", "10", 1, 29906, 29906, "")
	reason, ok := f.Check(r, 29906*29906, nil)
	assert.False(t, ok)
	assert.Equal(t, DropCollision, reason)

	// Low prices never trip the collision check even when equal to volume.
	r = rec("2", "XYZ", "A", "", "10", 1, 2, 2, "")
	_, ok = f.Check(r, 4, nil)
	assert.True(t, ok)
}

func TestAnomalyMarketSanity(t *testing.T) {
	f := NewAnomalyFilter(testScoring())
	market := &models.MarketContext{Price: 0.25, MarketCap: 75e6}

	// $29,000 unit price against a $0.25 quote is a transcription error.
	r := rec("1", "XYZ", "A", "", "10", 1, 100, 29000, "")
	reason, ok := f.Check(r, 100*29000, market)
	assert.False(t, ok)
	assert.Equal(t, DropPriceSanity, reason)

	// A single trade worth far more than 10% of the market cap is too.
	r = rec("2", "XYZ", "A", "", "10", 1, 40e6, 0.30, "")
	reason, ok = f.Check(r, 40e6*0.30, market)
	assert.False(t, ok)
	assert.Equal(t, DropCapSanity, reason)

	// Ordinary trade passes.
	r = rec("3", "XYZ", "A", "", "10", 1, 10000, 0.24, "")
	_, ok = f.Check(r, 2400, market)
	assert.True(t, ok)
}

func TestAnomalyNoMarketContextSkipsSanityChecks(t *testing.T) {
	f := NewAnomalyFilter(testScoring())

	// Implausible against any market, but with no context only the
	// collision check applies.
	r := rec("1", "XYZ", "A", "", "10", 1, 100, 29000, "")
	_, ok := f.Check(r, 100*29000, nil)
	assert.True(t, ok)
}
