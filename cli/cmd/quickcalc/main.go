package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/quickcalc/quickcalc/cli/internal/repl"
	"github.com/quickcalc/quickcalc/pkg/calc"
)

func main() {
	maxInput := flag.Int("max-input", calc.DefaultMaxInputLength, "maximum number of characters in the entry")
	historyLimit := flag.Int("history-limit", calc.DefaultHistoryLimit, "number of history lines kept")
	verbose := flag.Bool("v", false, "log every input to stderr")
	flag.Parse()

	// stdout belongs to the calculator; logs go to stderr.
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := calc.New(calc.Options{MaxInputLength: *maxInput, HistoryLimit: *historyLimit})
	fmt.Fprintln(os.Stdout, "quickcalc: type keys separated by spaces, \"help\" for more")

	if err := repl.New(c, os.Stdout).Run(ctx, os.Stdin); err != nil {
		slog.Error("quickcalc stopped", "err", err)
		os.Exit(1)
	}
}
