// internal/handlers/categories.go
package handlers

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/contracts"
	"finance-predictor/internal/logging"
	"finance-predictor/internal/models"

	"github.com/sirupsen/logrus"
)

func (h *Handler) GetCategories(ctx context.Context, _ contracts.GetCategories) ([]models.CategoryDto, error) {
	categories, err := h.repos.Categories.GetAll(ctx)
	if err != nil {
		return nil, storeErr(err, "load categories")
	}
	slices.SortStableFunc(categories, func(a, b models.Category) int { return cmp.Compare(a.Name, b.Name) })

	out := make([]models.CategoryDto, len(categories))
	for i, c := range categories {
		out[i] = models.NewCategoryDto(c)
	}
	return out, nil
}

// AddCategory returns the existing category when the name is already taken.
func (h *Handler) AddCategory(ctx context.Context, req contracts.AddCategory) (models.CategoryDto, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.CategoryDto{}, apperr.Invalid("category name is required")
	}

	existing, err := h.repos.Categories.GetByName(ctx, name)
	switch {
	case err == nil:
		return models.NewCategoryDto(*existing), nil
	case !errors.Is(err, apperr.ErrNotFound):
		return models.CategoryDto{}, storeErr(err, "look up category %q", name)
	}

	c := &models.Category{Name: name, Description: req.Description}
	if err := h.repos.Categories.Add(ctx, c); err != nil {
		return models.CategoryDto{}, storeErr(err, "add category %q", name)
	}
	logging.FromContext(ctx).WithField("category_id", c.ID).Info("category added")
	return models.NewCategoryDto(*c), nil
}

func (h *Handler) UpdateCategory(ctx context.Context, req contracts.UpdateCategory) (models.CategoryDto, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.CategoryDto{}, apperr.Invalid("category name is required")
	}

	c, err := h.repos.Categories.GetByID(ctx, req.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.CategoryDto{}, apperr.Invalid("category with ID %d does not exist", req.ID)
	}
	if err != nil {
		return models.CategoryDto{}, storeErr(err, "load category %d", req.ID)
	}

	c.Name = name
	c.Description = req.Description
	if err := h.repos.Categories.Update(ctx, c); err != nil {
		return models.CategoryDto{}, storeErr(err, "update category %d", req.ID)
	}
	return models.NewCategoryDto(*c), nil
}

// DeleteCategory removes the category's rules, then the category, then re-runs categorisation.
func (h *Handler) DeleteCategory(ctx context.Context, req contracts.DeleteCategory) error {
	removed, err := h.repos.Rules.DeleteByCategory(ctx, req.ID)
	if err != nil {
		return storeErr(err, "delete rules of category %d", req.ID)
	}
	if err := h.repos.Categories.Delete(ctx, req.ID); err != nil {
		return storeErr(err, "delete category %d", req.ID)
	}
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"category_id":   req.ID,
		"rules_removed": removed,
	}).Info("category deleted")

	_, err = h.engine.RecategorizeBestEffort(ctx)
	return err
}

func (h *Handler) GetCategoryRules(ctx context.Context, _ contracts.GetCategoryRules) ([]models.CategoryRuleDto, error) {
	rules, err := h.repos.Rules.GetAll(ctx)
	if err != nil {
		return nil, storeErr(err, "load category rules")
	}
	categories, err := h.repos.Categories.GetAll(ctx)
	if err != nil {
		return nil, storeErr(err, "load categories")
	}
	byID := make(map[int]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	out := make([]models.CategoryRuleDto, len(rules))
	for i, r := range rules {
		var dto *models.CategoryDto
		if c, ok := byID[r.CategoryID]; ok {
			d := models.NewCategoryDto(c)
			dto = &d
		}
		out[i] = ruleDto(r, dto)
	}
	return out, nil
}

func (h *Handler) AddCategoryRule(ctx context.Context, req contracts.AddCategoryRule) (models.CategoryRuleDto, error) {
	rule := models.CategoryRule{Keyword: req.Keyword, CategoryID: req.CategoryID, FieldType: req.FieldType}
	category, err := h.prepareRule(ctx, &rule)
	if err != nil {
		return models.CategoryRuleDto{}, err
	}
	if err := h.repos.Rules.Add(ctx, &rule); err != nil {
		return models.CategoryRuleDto{}, storeErr(err, "add category rule")
	}
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"rule_id": rule.ID,
		"keyword": rule.Keyword,
		"field":   rule.FieldType.String(),
	}).Info("category rule added")

	if _, err := h.engine.RecategorizeBestEffort(ctx); err != nil {
		return models.CategoryRuleDto{}, err
	}
	return ruleDto(rule, category), nil
}

func (h *Handler) UpdateCategoryRule(ctx context.Context, req contracts.UpdateCategoryRule) (models.CategoryRuleDto, error) {
	rule := models.CategoryRule{ID: req.ID, Keyword: req.Keyword, CategoryID: req.CategoryID, FieldType: req.FieldType}
	category, err := h.prepareRule(ctx, &rule)
	if err != nil {
		return models.CategoryRuleDto{}, err
	}
	if err := h.repos.Rules.Update(ctx, &rule); err != nil {
		return models.CategoryRuleDto{}, storeErr(err, "update category rule %d", rule.ID)
	}

	if _, err := h.engine.RecategorizeBestEffort(ctx); err != nil {
		return models.CategoryRuleDto{}, err
	}
	return ruleDto(rule, category), nil
}

func (h *Handler) DeleteCategoryRule(ctx context.Context, req contracts.DeleteCategoryRule) error {
	if err := h.repos.Rules.Delete(ctx, req.ID); err != nil {
		return storeErr(err, "delete category rule %d", req.ID)
	}
	_, err := h.engine.RecategorizeBestEffort(ctx)
	return err
}

// prepareRule validates the rule, defaults its field type and resolves its category.
func (h *Handler) prepareRule(ctx context.Context, rule *models.CategoryRule) (*models.CategoryDto, error) {
	rule.Keyword = strings.TrimSpace(rule.Keyword)
	if rule.Keyword == "" {
		return nil, apperr.Invalid("keyword is required")
	}
	if rule.FieldType == 0 {
		rule.FieldType = models.FieldTitle
	}

	c, err := h.repos.Categories.GetByID(ctx, rule.CategoryID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Invalid("category with ID %d does not exist", rule.CategoryID)
	}
	if err != nil {
		return nil, storeErr(err, "load category %d", rule.CategoryID)
	}
	dto := models.NewCategoryDto(*c)
	return &dto, nil
}

func ruleDto(r models.CategoryRule, category *models.CategoryDto) models.CategoryRuleDto {
	return models.CategoryRuleDto{
		ID:         r.ID,
		Keyword:    r.Keyword,
		CategoryID: r.CategoryID,
		FieldType:  r.FieldType,
		Category:   category,
	}
}

func (h *Handler) ApplyCategoryRules(ctx context.Context, _ contracts.ApplyCategoryRules) (models.ApplyResult, error) {
	n, err := h.engine.Recategorize(ctx)
	if err != nil {
		return models.ApplyResult{}, err
	}
	return models.ApplyResult{Updated: n}, nil
}

// AssignCategoryToTransaction sets a transaction's category by hand.
// An unknown category clears the transaction's category.
func (h *Handler) AssignCategoryToTransaction(ctx context.Context, req contracts.AssignCategoryToTransaction) error {
	if _, err := h.repos.Transactions.GetByID(ctx, req.TransactionID); err != nil {
		return storeErr(err, "load transaction %d", req.TransactionID)
	}

	name := ""
	c, err := h.repos.Categories.GetByID(ctx, req.CategoryID)
	switch {
	case err == nil:
		name = c.Name
	case !errors.Is(err, apperr.ErrNotFound):
		return storeErr(err, "load category %d", req.CategoryID)
	}

	if err := h.repos.Transactions.UpdateCategory(ctx, req.TransactionID, name); err != nil {
		return storeErr(err, "assign category to transaction %d", req.TransactionID)
	}
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"transaction_id": req.TransactionID,
		"category":       name,
	}).Info("category assigned")
	return nil
}
