// internal/models/category.go
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}

// FieldType selects the transaction field a rule inspects.
type FieldType int

const (
	FieldTitle        FieldType = 1
	FieldCounterparty FieldType = 2
)

func (f FieldType) String() string {
	switch f {
	case FieldTitle:
		return "Title"
	case FieldCounterparty:
		return "Counterparty"
	default:
		return strconv.Itoa(int(f))
	}
}

// UnmarshalText accepts the enum name (any case) or its numeric value.
func (f *FieldType) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	switch strings.ToLower(s) {
	case "", "title":
		*f = FieldTitle
		return nil
	case "counterparty":
		*f = FieldCounterparty
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("unknown field type %q", s)
	}
	*f = FieldType(n)
	return nil
}

func (f *FieldType) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FieldType(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("field type must be a number or a name: %w", err)
	}
	return f.UnmarshalText([]byte(s))
}

type CategoryRule struct {
	ID         int       `json:"id" db:"id"`
	Keyword    string    `json:"keyword" db:"keyword"`
	CategoryID int       `json:"categoryId" db:"category_id"`
	FieldType  FieldType `json:"fieldType" db:"field_type"`
}

type CategoryDto struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func NewCategoryDto(c Category) CategoryDto {
	return CategoryDto{ID: c.ID, Name: c.Name, Description: c.Description}
}

type CategoryRuleDto struct {
	ID         int          `json:"id"`
	Keyword    string       `json:"keyword"`
	CategoryID int          `json:"categoryId"`
	FieldType  FieldType    `json:"fieldType"`
	Category   *CategoryDto `json:"category"`
}

type CategoryAnalysisDto struct {
	CategoryName     string          `json:"categoryName"`
	TransactionCount int             `json:"transactionCount"`
	Percentage       float64         `json:"percentage"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TotalDisplay     string          `json:"totalDisplay"`
	Color            string          `json:"color"`
}
