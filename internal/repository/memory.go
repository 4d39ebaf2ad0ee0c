// internal/repository/memory.go
package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/models"
)

// MemoryStore keeps categories, rules and transactions in process memory.
// Reads return copies so callers never alias store state.
type MemoryStore struct {
	mu           sync.RWMutex
	nextID       int
	categories   map[int]models.Category
	rules        map[int]models.CategoryRule
	transactions map[int]models.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories:   make(map[int]models.Category),
		rules:        make(map[int]models.CategoryRule),
		transactions: make(map[int]models.Transaction),
	}
}

// Repositories returns views over the store for each aggregate.
func (s *MemoryStore) Repositories() Repositories {
	return Repositories{
		Categories:   memoryCategories{s},
		Rules:        memoryRules{s},
		Transactions: memoryTransactions{s},
	}
}

func (s *MemoryStore) allocID() int {
	s.nextID++
	return s.nextID
}

func sortedValues[T any](m map[int]T, less func(a, b T) int) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortStableFunc(out, less)
	return out
}

type memoryCategories struct{ s *MemoryStore }

func (r memoryCategories) GetAll(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.categories, func(a, b models.Category) int { return cmp.Compare(a.ID, b.ID) }), nil
}

func (r memoryCategories) GetByID(ctx context.Context, id int) (*models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, apperr.NotFound("category %d not found", id)
	}
	return &c, nil
}

func (r memoryCategories) GetByName(ctx context.Context, name string) (*models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, apperr.NotFound("category %q not found", name)
}

func (r memoryCategories) Add(ctx context.Context, c *models.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Name == c.Name {
			return apperr.Invalid("category %q already exists", c.Name)
		}
	}
	c.ID = r.s.allocID()
	r.s.categories[c.ID] = *c
	return nil
}

func (r memoryCategories) Update(ctx context.Context, c *models.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return apperr.NotFound("category %d not found", c.ID)
	}
	for id, existing := range r.s.categories {
		if id != c.ID && existing.Name == c.Name {
			return apperr.Invalid("category %q already exists", c.Name)
		}
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r memoryCategories) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.categories, id)
	for rid, rule := range r.s.rules {
		if rule.CategoryID == id {
			delete(r.s.rules, rid)
		}
	}
	return nil
}

type memoryRules struct{ s *MemoryStore }

func (r memoryRules) GetAll(ctx context.Context) ([]models.CategoryRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.rules, func(a, b models.CategoryRule) int { return cmp.Compare(a.ID, b.ID) }), nil
}

func (r memoryRules) GetByID(ctx context.Context, id int) (*models.CategoryRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rule, ok := r.s.rules[id]
	if !ok {
		return nil, apperr.NotFound("category rule %d not found", id)
	}
	return &rule, nil
}

func (r memoryRules) Add(ctx context.Context, rule *models.CategoryRule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rule.ID = r.s.allocID()
	r.s.rules[rule.ID] = *rule
	return nil
}

func (r memoryRules) Update(ctx context.Context, rule *models.CategoryRule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rules[rule.ID]; !ok {
		return apperr.NotFound("category rule %d not found", rule.ID)
	}
	r.s.rules[rule.ID] = *rule
	return nil
}

func (r memoryRules) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.rules, id)
	return nil
}

func (r memoryRules) DeleteByCategory(ctx context.Context, categoryID int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, rule := range r.s.rules {
		if rule.CategoryID == categoryID {
			delete(r.s.rules, id)
			n++
		}
	}
	return n, nil
}

type memoryTransactions struct{ s *MemoryStore }

func byDateDesc(a, b models.Transaction) int {
	if c := b.TransactionDate.Compare(a.TransactionDate); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func (r memoryTransactions) GetAll(ctx context.Context) ([]models.Transaction, error) {
	return r.Query(ctx, models.TransactionFilter{})
}

func (r memoryTransactions) Query(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Transaction, 0, len(r.s.transactions))
	for _, t := range r.s.transactions {
		if MatchesFilter(t, f) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, byDateDesc)
	return out, nil
}

// MatchesFilter applies filter semantics shared by every store.
func MatchesFilter(t models.Transaction, f models.TransactionFilter) bool {
	if f.Year != nil {
		date := t.TransactionDate.UTC()
		if date.Year() != *f.Year {
			return false
		}
		if f.Month != nil && int(date.Month()) != *f.Month {
			return false
		}
	}
	if f.Account != "" && t.Account != f.Account {
		return false
	}
	if f.Counterparty != "" && t.Counterparty != f.Counterparty {
		return false
	}
	return true
}

func (r memoryTransactions) GetByID(ctx context.Context, id int) (*models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, apperr.NotFound("transaction %d not found", id)
	}
	return &t, nil
}

func (r memoryTransactions) GetUncategorized(ctx context.Context) ([]models.Transaction, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, t := range all {
		if t.IsUncategorized() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r memoryTransactions) BulkInsert(ctx context.Context, txs []models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range txs {
		txs[i].ID = r.s.allocID()
		r.s.transactions[txs[i].ID] = txs[i]
	}
	return nil
}

func (r memoryTransactions) Update(ctx context.Context, t *models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.transactions[t.ID]; !ok {
		return apperr.NotFound("transaction %d not found", t.ID)
	}
	r.s.transactions[t.ID] = *t
	return nil
}

func (r memoryTransactions) UpdateCategory(ctx context.Context, id int, category string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return apperr.NotFound("transaction %d not found", id)
	}
	t.Category = category
	r.s.transactions[id] = t
	return nil
}

func (r memoryTransactions) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transactions = make(map[int]models.Transaction)
	return nil
}

func (r memoryTransactions) Filters(ctx context.Context) (models.TransactionFilters, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return models.TransactionFilters{}, err
	}
	return BuildFilters(all), nil
}

// BuildFilters collects distinct non-blank accounts and counterparties (ascending) and
// years (descending).
func BuildFilters(txs []models.Transaction) models.TransactionFilters {
	accounts := map[string]bool{}
	counterparties := map[string]bool{}
	years := map[int]bool{}
	for _, t := range txs {
		if strings.TrimSpace(t.Account) != "" {
			accounts[t.Account] = true
		}
		if strings.TrimSpace(t.Counterparty) != "" {
			counterparties[t.Counterparty] = true
		}
		years[t.TransactionDate.Year()] = true
	}

	f := models.TransactionFilters{
		Accounts:       make([]string, 0, len(accounts)),
		Counterparties: make([]string, 0, len(counterparties)),
		Years:          make([]int, 0, len(years)),
	}
	for a := range accounts {
		f.Accounts = append(f.Accounts, a)
	}
	for c := range counterparties {
		f.Counterparties = append(f.Counterparties, c)
	}
	for y := range years {
		f.Years = append(f.Years, y)
	}
	slices.Sort(f.Accounts)
	slices.Sort(f.Counterparties)
	slices.SortFunc(f.Years, func(a, b int) int { return cmp.Compare(b, a) })
	return f
}
