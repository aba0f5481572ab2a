package engine

import (
	"SediPull/internal/domain/models"
	"SediPull/pkg/config"
)

// Classifier maps transaction codes to semantic categories. The tables
// come from configuration so the mapping can be retuned without touching
// scoring logic; downstream stages switch on the closed Category type and
// never re-inspect code strings.
type Classifier struct {
	byCode map[string]models.Category
}

// NewClassifier builds the lookup from the configured code tables.
func NewClassifier(tables config.CodeTables) *Classifier {
	byCode := make(map[string]models.Category)
	add := func(codes []string, cat models.Category) {
		for _, c := range codes {
			byCode[c] = cat
		}
	}
	add(tables.PublicBuy, models.CategoryPublicBuy)
	add(tables.PrivateBuy, models.CategoryPrivateBuy)
	add(tables.PlanBuy, models.CategoryPlanBuy)
	add(tables.Exercise, models.CategoryExercise)
	add(tables.Grant, models.CategoryGrant)
	add(tables.Noise, models.CategoryNoise)
	return &Classifier{byCode: byCode}
}

// Classify returns the category for a code. Codes absent from every table
// classify as Unknown, which the evaluator excludes like noise.
func (c *Classifier) Classify(code string) models.Category {
	if cat, ok := c.byCode[code]; ok {
		return cat
	}
	return models.CategoryUnknown
}
