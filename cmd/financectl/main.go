// cmd/financectl/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"finance-predictor/internal/apperr"
	"finance-predictor/internal/contracts"
	"finance-predictor/internal/cqrs"

	"github.com/google/subcommands"
)

// as a short lived CLI, global flags are fine.
var (
	serverURL = flag.String("server", envOr("FINANCE_SERVER", "http://localhost:8080"), "base URL of the finance server")
	timeout   = flag.Duration("timeout", 60*time.Second, "request timeout")
)

var stdout io.Writer = os.Stdout

func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&statusCmd{}, "server")

	c.Register(&categoriesCmd{}, "categories")
	c.Register(&addCategoryCmd{}, "categories")
	c.Register(&rulesCmd{}, "categories")
	c.Register(&addRuleCmd{}, "categories")
	c.Register(&applyRulesCmd{}, "categories")

	c.Register(&importCmd{}, "transactions")
	c.Register(&uncategorizedCmd{}, "transactions")
	c.Register(&analysisCmd{}, "transactions")

	c.Register(&tickersCmd{}, "market")
	c.Register(&backtestCmd{}, "market")
}

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *cqrs.Client {
	endpoints := cqrs.NewEndpoints()
	contracts.Register(endpoints)
	return cqrs.NewClient(*serverURL, endpoints, nil)
}

// send dispatches req to the server with the global timeout.
func send(ctx context.Context, req any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	return newClient().Send(ctx, req, out)
}

// fail prints err to stderr and maps it to an exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if apperr.KindOf(err) == apperr.KindInvalid {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}
