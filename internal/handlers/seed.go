// internal/handlers/seed.go
package handlers

import (
	"context"

	"finance-predictor/internal/config"
	"finance-predictor/internal/logging"
	"finance-predictor/internal/models"
	"finance-predictor/internal/repository"

	"github.com/sirupsen/logrus"
)

// ApplySeed creates the seed categories and rules when the store has no categories yet.
// It reports whether anything was written.
func ApplySeed(ctx context.Context, repos repository.Repositories, seed *config.Seed) (bool, error) {
	if seed == nil || len(seed.Categories) == 0 {
		return false, nil
	}
	existing, err := repos.Categories.GetAll(ctx)
	if err != nil {
		return false, storeErr(err, "load categories")
	}
	if len(existing) > 0 {
		logging.FromContext(ctx).WithField("categories", len(existing)).Debug("store already populated, seed skipped")
		return false, nil
	}

	rules := 0
	for _, sc := range seed.Categories {
		c := &models.Category{Name: sc.Name, Description: sc.Description}
		if err := repos.Categories.Add(ctx, c); err != nil {
			return true, storeErr(err, "seed category %q", sc.Name)
		}
		for _, sr := range sc.Rules {
			field, err := sr.FieldType()
			if err != nil {
				return true, err
			}
			rule := &models.CategoryRule{Keyword: sr.Keyword, CategoryID: c.ID, FieldType: field}
			if err := repos.Rules.Add(ctx, rule); err != nil {
				return true, storeErr(err, "seed rule %q", sr.Keyword)
			}
			rules++
		}
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"categories": len(seed.Categories),
		"rules":      rules,
	}).Info("seed applied")
	return true, nil
}
