// internal/categorize/categorize.go
package categorize

import (
	"context"
	"strings"

	"finance-predictor/internal/models"
)

// PersistFunc stores a category assignment made by ApplyAll.
type PersistFunc func(ctx context.Context, t *models.Transaction) error

// compiledRule is a rule whose keyword is usable and whose category exists.
type compiledRule struct {
	keyword  string
	field    models.FieldType
	category string
}

func compile(rules []models.CategoryRule, categories []models.Category) []compiledRule {
	names := make(map[int]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if strings.TrimSpace(r.Keyword) == "" {
			continue
		}
		name, ok := names[r.CategoryID]
		if !ok {
			continue
		}
		out = append(out, compiledRule{
			keyword:  strings.ToLower(r.Keyword),
			field:    r.FieldType,
			category: name,
		})
	}
	return out
}

// fieldValue selects the inspected text. Unknown field types fall back to the title.
func fieldValue(t *models.Transaction, f models.FieldType) string {
	if f == models.FieldCounterparty {
		return t.Counterparty
	}
	return t.Title
}

func (r compiledRule) matches(t *models.Transaction) bool {
	return strings.Contains(strings.ToLower(fieldValue(t, r.field)), r.keyword)
}

// ApplyAll evaluates rules in order against every transaction and persists each match,
// so the last matching rule determines the final category. It returns the number of
// persisted updates.
func ApplyAll(ctx context.Context, rules []models.CategoryRule, categories []models.Category, txs []*models.Transaction, persist PersistFunc) (int, error) {
	updated := 0
	for _, rule := range compile(rules, categories) {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		for _, t := range txs {
			if !rule.matches(t) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return updated, err
			}
			t.Category = rule.category
			if err := persist(ctx, t); err != nil {
				return updated, err
			}
			updated++
		}
	}
	return updated, nil
}

// ApplyToNew assigns each transaction the category of the first matching rule without
// persisting anything. It returns how many transactions were categorised.
func ApplyToNew(ctx context.Context, rules []models.CategoryRule, categories []models.Category, txs []models.Transaction) (int, error) {
	compiled := compile(rules, categories)
	n := 0
	for i := range txs {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		for _, rule := range compiled {
			if rule.matches(&txs[i]) {
				txs[i].Category = rule.category
				n++
				break
			}
		}
	}
	return n, nil
}
