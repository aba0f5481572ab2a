package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"SediPull/internal/domain/models"
	"SediPull/pkg/config"
)

func TestClassifyDefaultTables(t *testing.T) {
	c := NewClassifier(testScoring().Codes)

	cases := []struct {
		code string
		want models.Category
	}{
		{"10", models.CategoryPublicBuy},
		{"11", models.CategoryPrivateBuy},
		{"16", models.CategoryPrivateBuy},
		{"30", models.CategoryPlanBuy},
		{"31", models.CategoryPlanBuy},
		{"54", models.CategoryExercise},
		{"56", models.CategoryGrant},
		{"00", models.CategoryNoise},
		{"99", models.CategoryNoise},
		{"123", models.CategoryUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Classify(tc.code), "code %s", tc.code)
	}
}

func TestClassifierTablesAreSwappable(t *testing.T) {
	// A retuned mapping changes categories without touching any logic.
	c := NewClassifier(config.CodeTables{
		PublicBuy: []string{"10", "16"},
		Noise:     []string{"11"},
	})

	assert.Equal(t, models.CategoryPublicBuy, c.Classify("16"))
	assert.Equal(t, models.CategoryNoise, c.Classify("11"))
	assert.Equal(t, models.CategoryUnknown, c.Classify("30"))
}

func TestCategoryQualifies(t *testing.T) {
	assert.True(t, models.CategoryPublicBuy.Qualifies())
	assert.True(t, models.CategoryExercise.Qualifies())
	assert.False(t, models.CategoryGrant.Qualifies(), "grants are unpaid compensation")
	assert.False(t, models.CategoryNoise.Qualifies())
	assert.False(t, models.CategoryUnknown.Qualifies())
}
