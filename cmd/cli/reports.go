package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dvloznov/fingenius/internal/app"
	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/notionsync"
	"github.com/dvloznov/fingenius/internal/report"
)

// runReports is the entry point for an external scheduler such as Cloud
// Scheduler or a system cron. It exits non-zero only when the batch could not run.
func runReports(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("run-reports", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	fs.Parse(args)

	result := a.Runner.Run(ctx)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		fmt.Printf("Period:    %s\n", report.PeriodLabel(result.PeriodStart, result.PeriodEnd))
		fmt.Printf("Processed: %d\n", result.ProcessedCount)
		fmt.Printf("Failed:    %d\n", result.FailedCount)
		fmt.Printf("Skipped:   %d\n", result.SkippedCount)
	}

	if !result.Success {
		return fmt.Errorf("report run failed: %s", result.Error)
	}
	return nil
}

func runPreviewReport(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("preview-report", flag.ExitOnError)
	userID := fs.String("user", "", "User ID")
	month := fs.String("month", "", "Month as YYYY-MM (default last month)")
	fs.Parse(args)

	loc, err := a.Config.Location()
	if err != nil {
		return err
	}

	var start, end time.Time
	if *month == "" {
		start, end = report.PreviousMonth(time.Now().In(loc))
	} else if start, end, err = parseMonth(*month, loc); err != nil {
		return err
	}

	payload, err := a.Reports.Preview(ctx, *userID, start, end)
	if err != nil {
		return err
	}
	printPayload(start, end, payload)
	return nil
}

func printPayload(start, end time.Time, payload *domain.ReportPayload) {
	fmt.Printf("=== %s ===\n", report.PeriodLabel(start, end))
	s := payload.Summary
	if s == nil {
		fmt.Println("No activity in this period.")
		return
	}

	fmt.Printf("Income:        %.2f\n", s.TotalIncome)
	fmt.Printf("Expenses:      %.2f\n", s.TotalExpense)
	fmt.Printf("Balance:       %.2f\n", s.AvailableBalance)
	fmt.Printf("Savings rate:  %.1f%%\n", s.SavingsRate)
	fmt.Printf("Transactions:  %d\n", s.TransactionCount)

	if len(s.Categories) > 0 {
		fmt.Println("\nTop categories:")
		for _, c := range s.Categories {
			fmt.Printf("  %-16s %10.2f  (%d%%)\n", c.Name, c.Amount, c.Percentage)
		}
	}

	fmt.Printf("\nInsights (%s):\n", payload.Insights.Status)
	if len(payload.Insights.Items) == 0 && payload.Insights.Reason != "" {
		fmt.Printf("  %s\n", payload.Insights.Reason)
	}
	for _, item := range payload.Insights.Items {
		fmt.Printf("  - %s\n", item)
	}
}

func runListReports(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("list-reports", flag.ExitOnError)
	userID := fs.String("user", "", "User ID")
	page := fs.Int("page", 1, "Page number")
	size := fs.Int("size", 20, "Page size")
	fs.Parse(args)

	reports, p, err := a.Reports.ListReports(ctx, *userID, domain.Page{PageNumber: *page, PageSize: *size})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSTATUS\tTITLE")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Format(time.DateTime), r.Status, r.Title)
	}
	w.Flush()
	fmt.Printf("\nPage %d of %d (%d total)\n", p.PageNumber, p.TotalPages, p.TotalCount)
	return nil
}

func runReportSetting(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("report-setting", flag.ExitOnError)
	userID := fs.String("user", "", "User ID")
	enabled := fs.String("enabled", "", "true or false")
	frequency := fs.String("frequency", "", "MONTHLY")
	fs.Parse(args)

	isEnabled, err := parseOptionalBool(*enabled)
	if err != nil {
		return err
	}

	var setting *domain.ReportSetting
	if isEnabled == nil && *frequency == "" {
		setting, err = a.Reports.GetSetting(ctx, *userID)
	} else {
		update := report.SettingUpdate{IsEnabled: isEnabled}
		if *frequency != "" {
			f, err := domain.ParseReportFrequency(*frequency)
			if err != nil {
				return err
			}
			update.Frequency = &f
		}
		setting, err = a.Reports.UpdateSetting(ctx, *userID, update)
	}
	if err != nil {
		return err
	}

	lastSent := "never"
	if setting.LastSentAt != nil {
		lastSent = setting.LastSentAt.Format(time.DateTime)
	}
	fmt.Printf("Frequency: %s\nEnabled:   %t\nLast sent: %s\n", setting.Frequency, setting.IsEnabled, lastSent)
	return nil
}

func runSyncNotion(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("sync-notion", flag.ExitOnError)
	dbID := fs.String("db", a.Config.NotionReportsDBID, "Notion reports database ID")
	since := fs.String("since", "", "Sync reports created on or after YYYY-MM-DD (default 90 days ago)")
	dryRun := fs.Bool("dry-run", false, "Log changes without writing to Notion")
	fs.Parse(args)

	if a.Config.NotionToken == "" {
		return fmt.Errorf("NOTION_TOKEN is not set")
	}
	if *dbID == "" {
		return fmt.Errorf("-db (or NOTION_REPORTS_DB_ID) is required")
	}

	from, err := parseDate(*since, time.Now().AddDate(0, 0, -90))
	if err != nil {
		return err
	}

	stats, err := notionsync.SyncReports(ctx, a.Store, notionsync.NewNotionClient(a.Config.NotionToken), *dbID, from, *dryRun)
	if err != nil {
		return err
	}
	fmt.Printf("Created %d, updated %d, archived %d, failed %d\n", stats.Created, stats.Updated, stats.Archived, stats.Failed)
	return nil
}
