// Command cli is the operator command line for FinGenius.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dvloznov/fingenius/internal/app"
	"github.com/dvloznov/fingenius/internal/config"
	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/shopspring/decimal"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app.App, args []string) error
}

var commands = []command{
	{"register", "Create a user with a default report setting", runRegister},
	{"add-transaction", "Record a transaction", runAddTransaction},
	{"list-transactions", "List a user's transactions", runListTransactions},
	{"import-transactions", "Bulk import transactions from a JSON file", runImportTransactions},
	{"duplicate-transaction", "Copy a transaction as a one-off", runDuplicateTransaction},
	{"delete-transactions", "Delete one or more transactions", runDeleteTransactions},
	{"run-reports", "Generate and email last month's reports for every enabled user", runReports},
	{"preview-report", "Print a report for one user and month without storing it", runPreviewReport},
	{"list-reports", "List a user's stored reports", runListReports},
	{"report-setting", "Show or change a user's report setting", runReportSetting},
	{"upload-receipt", "Upload a receipt image to GCS", runUploadReceipt},
	{"scan-receipt", "Extract a transaction draft from a receipt image", runScanReceipt},
	{"sync-notion", "Mirror recent reports into the Notion reports database", runSyncNotion},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage()
		return
	}

	cmd, ok := findCommand(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	runErr := cmd.run(ctx, a, os.Args[2:])
	if err := a.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close backends")
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Str("command", name).Msg("Command failed")
	}
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage() {
	fmt.Println("FinGenius CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	for _, c := range commands {
		fmt.Printf("  %-22s %s\n", c.name, c.summary)
	}
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// parseDate accepts YYYY-MM-DD or RFC 3339. Empty means now.
func parseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// parseMonth parses YYYY-MM into the first and last instant of that month in loc.
func parseMonth(s string, loc *time.Location) (start, end time.Time, err error) {
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	start = t
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end, nil
}

// parseOptionalBool maps "" to nil.
func parseOptionalBool(s string) (*bool, error) {
	switch strings.ToLower(s) {
	case "":
		return nil, nil
	case "true", "yes", "1":
		v := true
		return &v, nil
	case "false", "no", "0":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("invalid boolean %q", s)
	}
}

// parseAmount parses a decimal major-unit amount exactly before handing it on as float.
func parseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("amount must be positive")
	}
	return d.Round(2).InexactFloat64(), nil
}

func formatMinor(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
