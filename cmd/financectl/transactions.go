// cmd/financectl/transactions.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/contracts"
	"finance-predictor/internal/handlers"
	"finance-predictor/internal/models"

	"github.com/google/subcommands"
)

type importCmd struct {
	commit bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "uploads a bank statement CSV" }
func (*importCmd) Usage() string {
	return `import [-commit] <statement.csv>

Uploads a bank statement export. Without -commit the parsed rows are only previewed.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.commit, "commit", false, "store the parsed transactions")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one statement file is required")
		return subcommands.ExitUsageError
	}

	res, err := uploadStatement(ctx, f.Arg(0), c.commit)
	if err != nil {
		return fail(err)
	}

	for _, s := range res.Skipped {
		fmt.Fprintf(os.Stderr, "Warning: skipped %s\n", s)
	}
	if res.Committed {
		fmt.Fprintf(stdout, "%s: %d transactions imported\n", res.Filename, res.Count)
	} else {
		fmt.Fprintf(stdout, "%s: %d transactions parsed (preview, use -commit to store)\n", res.Filename, res.Count)
	}
	return subcommands.ExitSuccess
}

func uploadStatement(ctx context.Context, filename string, commit bool) (*handlers.ImportResponse, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	target := strings.TrimRight(*serverURL, "/") + "/api/transactions/import"
	if commit {
		target += "?commit=true"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var env apperr.Envelope
		json.Unmarshal(payload, &env)
		return nil, apperr.FromStatus(resp.StatusCode, env.Error)
	}

	var out handlers.ImportResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &out, nil
}

type uncategorizedCmd struct{}

func (*uncategorizedCmd) Name() string     { return "uncategorized" }
func (*uncategorizedCmd) Synopsis() string { return "lists transactions without a category" }
func (*uncategorizedCmd) Usage() string {
	return "uncategorized\n\nLists transactions no rule matched, newest first.\n"
}
func (*uncategorizedCmd) SetFlags(*flag.FlagSet) {}

func (*uncategorizedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var txs []models.Transaction
	if err := send(ctx, contracts.GetUncategorizedTransactions{}, &txs); err != nil {
		return fail(err)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tCOUNTERPARTY\tTITLE")
	for _, t := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s %s\t%s\t%s\n",
			t.ID, t.TransactionDate.Format("2006-01-02"), t.Amount.StringFixed(2), t.Currency, t.Counterparty, t.Title)
	}
	tw.Flush()
	fmt.Fprintf(stdout, "%d uncategorized\n", len(txs))
	return subcommands.ExitSuccess
}

type analysisCmd struct{}

func (*analysisCmd) Name() string           { return "analysis" }
func (*analysisCmd) Synopsis() string       { return "shows spending per category" }
func (*analysisCmd) Usage() string          { return "analysis\n\nShows outflows grouped by category.\n" }
func (*analysisCmd) SetFlags(*flag.FlagSet) {}

func (*analysisCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var rows []models.CategoryAnalysisDto
	if err := send(ctx, contracts.GetCategoryAnalysis{}, &rows); err != nil {
		return fail(err)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CATEGORY\tCOUNT\tTOTAL\tSHARE\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.1f%%\t\n", r.CategoryName, r.TransactionCount, r.TotalDisplay, r.Percentage)
	}
	tw.Flush()
	return subcommands.ExitSuccess
}
