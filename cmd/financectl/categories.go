// cmd/financectl/categories.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"finance-predictor/internal/contracts"
	"finance-predictor/internal/models"

	"github.com/google/subcommands"
)

type categoriesCmd struct{}

func (*categoriesCmd) Name() string           { return "categories" }
func (*categoriesCmd) Synopsis() string       { return "lists expense categories" }
func (*categoriesCmd) Usage() string          { return "categories\n\nLists expense categories sorted by name.\n" }
func (*categoriesCmd) SetFlags(*flag.FlagSet) {}

func (*categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var cats []models.CategoryDto
	if err := send(ctx, contracts.GetCategories{}, &cats); err != nil {
		return fail(err)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, c := range cats {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, c.Description)
	}
	tw.Flush()
	return subcommands.ExitSuccess
}

type addCategoryCmd struct {
	name        string
	description string
}

func (*addCategoryCmd) Name() string     { return "add-category" }
func (*addCategoryCmd) Synopsis() string { return "creates an expense category" }
func (*addCategoryCmd) Usage() string {
	return `add-category -name <name> [-description <text>]

Creates a category. An existing category with the same name is returned unchanged.
`
}

func (c *addCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "category name")
	f.StringVar(&c.description, "description", "", "optional description")
}

func (c *addCategoryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		return subcommands.ExitUsageError
	}

	var cat models.CategoryDto
	if err := send(ctx, contracts.AddCategory{Name: c.name, Description: c.description}, &cat); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "category %d: %s\n", cat.ID, cat.Name)
	return subcommands.ExitSuccess
}

type rulesCmd struct{}

func (*rulesCmd) Name() string           { return "rules" }
func (*rulesCmd) Synopsis() string       { return "lists categorization rules" }
func (*rulesCmd) Usage() string          { return "rules\n\nLists keyword rules with their category.\n" }
func (*rulesCmd) SetFlags(*flag.FlagSet) {}

func (*rulesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var rules []models.CategoryRuleDto
	if err := send(ctx, contracts.GetCategoryRules{}, &rules); err != nil {
		return fail(err)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKEYWORD\tFIELD\tCATEGORY")
	for _, r := range rules {
		category := "-"
		if r.Category != nil {
			category = r.Category.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Keyword, r.FieldType, category)
	}
	tw.Flush()
	return subcommands.ExitSuccess
}

type addRuleCmd struct {
	keyword    string
	categoryID int
	field      string
}

func (*addRuleCmd) Name() string     { return "add-rule" }
func (*addRuleCmd) Synopsis() string { return "adds a keyword rule and recategorizes" }
func (*addRuleCmd) Usage() string {
	return `add-rule -keyword <text> -category <id> [-field title|counterparty]

Adds a case-insensitive keyword rule. Existing transactions are recategorized.
`
}

func (c *addRuleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.keyword, "keyword", "", "keyword to match")
	f.IntVar(&c.categoryID, "category", 0, "category id")
	f.StringVar(&c.field, "field", "title", "transaction field to match: title or counterparty")
}

func (c *addRuleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var field models.FieldType
	if err := field.UnmarshalText([]byte(c.field)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	req := contracts.AddCategoryRule{Keyword: c.keyword, CategoryID: c.categoryID, FieldType: field}
	var rule models.CategoryRuleDto
	if err := send(ctx, req, &rule); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "rule %d: %q on %s\n", rule.ID, rule.Keyword, rule.FieldType)
	return subcommands.ExitSuccess
}

type applyRulesCmd struct{}

func (*applyRulesCmd) Name() string           { return "apply-rules" }
func (*applyRulesCmd) Synopsis() string       { return "recategorizes every transaction" }
func (*applyRulesCmd) Usage() string          { return "apply-rules\n\nRuns the rules over all stored transactions.\n" }
func (*applyRulesCmd) SetFlags(*flag.FlagSet) {}

func (*applyRulesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var res models.ApplyResult
	if err := send(ctx, contracts.ApplyCategoryRules{}, &res); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "transactions updated: %d\n", res.Updated)
	return subcommands.ExitSuccess
}
