// cmd/financectl/market.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"finance-predictor/internal/contracts"
	"finance-predictor/internal/models"

	"github.com/google/subcommands"
)

type statusCmd struct{}

func (*statusCmd) Name() string           { return "status" }
func (*statusCmd) Synopsis() string       { return "checks that the server is up" }
func (*statusCmd) Usage() string          { return "status\n\nPrints the server status and version.\n" }
func (*statusCmd) SetFlags(*flag.FlagSet) {}

func (*statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var st models.ApiStatus
	if err := send(ctx, contracts.GetApiStatus{}, &st); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "%s (version %s, %s)\n", st.Status, st.Version, st.Timestamp.Format(time.RFC3339))
	return subcommands.ExitSuccess
}

type tickersCmd struct {
	filter string
}

func (*tickersCmd) Name() string     { return "tickers" }
func (*tickersCmd) Synopsis() string { return "lists the S&P 500 tickers known to the server" }
func (*tickersCmd) Usage() string {
	return "tickers [-filter <text>]\n\nLists tickers, optionally filtered by symbol or name.\n"
}

func (c *tickersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.filter, "filter", "", "case-insensitive substring of the symbol or company name")
}

func (c *tickersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var tickers []models.CompanyTicker
	if err := send(ctx, contracts.GetSp500Tickers{}, &tickers); err != nil {
		return fail(err)
	}

	filter := strings.ToLower(c.filter)
	for _, t := range tickers {
		if filter != "" && !strings.Contains(strings.ToLower(t.Ticker+" "+t.Name), filter) {
			continue
		}
		fmt.Fprintf(stdout, "%-6s %s\n", t.Ticker, t.Name)
	}
	return subcommands.ExitSuccess
}

type backtestCmd struct {
	ticker string
	year   int
}

func (*backtestCmd) Name() string     { return "backtest" }
func (*backtestCmd) Synopsis() string { return "backtests the predictor on a ticker" }
func (*backtestCmd) Usage() string {
	return `backtest -ticker <symbol> -year <year>

Replays weekly 30 day predictions over one calendar year and scores them.
`
}

func (c *backtestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "ticker", "", "ticker symbol")
	f.IntVar(&c.year, "year", time.Now().Year()-1, "calendar year to replay")
}

func (c *backtestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" {
		fmt.Fprintln(os.Stderr, "Error: -ticker is required")
		return subcommands.ExitUsageError
	}

	var res models.BacktestResult
	if err := send(ctx, contracts.RunBacktest{Ticker: c.ticker, Year: c.year}, &res); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "%s %d: %d points, accuracy %.1f%%, mse %.6f\n",
		res.Ticker, res.Year, len(res.Points), res.Accuracy*100, res.MeanSquaredError)
	return subcommands.ExitSuccess
}
