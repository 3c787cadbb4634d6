package notionsync

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/jomei/notionapi"
)

// SyncStats counts what a sync did (or would do, on a dry run).
type SyncStats struct {
	Created  int
	Updated  int
	Archived int
	Failed   int
}

// SyncReports mirrors every report created since the given time into the
// Notion database. Pages are keyed by the "Report ID" title: existing pages
// are updated, missing ones created, and pages without a report ID archived.
// Failures on single pages are counted and do not stop the sync.
func SyncReports(ctx context.Context, repo ReportSource, notionClient NotionService, notionDBID string, since time.Time, dryRun bool) (SyncStats, error) {
	log := logger.FromContext(ctx)
	var stats SyncStats

	log.Info().
		Time("since", since).
		Bool("dry_run", dryRun).
		Msg("Starting report sync to Notion")

	reports, err := repo.ListReportsSince(ctx, since)
	if err != nil {
		return stats, fmt.Errorf("failed to query reports: %w", err)
	}
	log.Info().Int("report_count", len(reports)).Msg("Retrieved reports")

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return stats, fmt.Errorf("failed to query Notion pages: %w", err)
	}
	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	pageByReport := make(map[string]string, len(notionPages))
	for _, page := range notionPages {
		reportID := extractReportID(page)
		if reportID != "" {
			pageByReport[reportID] = string(page.ID)
			continue
		}

		if dryRun {
			log.Info().Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive Notion page without report ID")
			stats.Archived++
			continue
		}
		if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("page_id", string(page.ID)).Msg("Failed to archive Notion page")
			stats.Failed++
			continue
		}
		stats.Archived++
	}

	for _, r := range reports {
		pageID, exists := pageByReport[r.ID]

		if dryRun {
			if exists {
				log.Info().Str("report_id", r.ID).Str("page_id", pageID).Msg("[DRY RUN] Would update Notion page")
				stats.Updated++
			} else {
				log.Info().Str("report_id", r.ID).Msg("[DRY RUN] Would create Notion page")
				stats.Created++
			}
			continue
		}

		props := ReportToNotionProperties(r)
		if exists {
			if _, err := notionClient.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Str("report_id", r.ID).Str("page_id", pageID).Msg("Failed to update Notion page")
				stats.Failed++
				continue
			}
			stats.Updated++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, props)
		if err != nil {
			log.Warn().Err(err).Str("report_id", r.ID).Msg("Failed to create Notion page")
			stats.Failed++
			continue
		}
		log.Debug().Str("report_id", r.ID).Str("page_id", string(page.ID)).Msg("Created Notion page")
		stats.Created++
	}

	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("archived", stats.Archived).
		Int("failed", stats.Failed).
		Int("total", len(reports)).
		Msg("Report sync completed")

	return stats, nil
}

// queryAllNotionPages follows the query cursor until every page is read.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: 100}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
