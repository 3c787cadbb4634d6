// Package notionsync mirrors generated reports into a Notion database.
package notionsync

import (
	"context"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/jomei/notionapi"
)

//go:generate mockgen -destination=mocks/mock_notionsync.go -source=interfaces.go

// NotionService defines the Notion operations the sync needs.
type NotionService interface {
	// CreatePage creates a new page in a Notion database with the given properties.
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)

	// UpdatePage updates an existing Notion page with the given properties.
	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)

	// QueryDatabase queries a Notion database with the given filter.
	QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)

	// DeletePage archives a page.
	DeletePage(ctx context.Context, pageID string) error
}

// ReportSource lists reports to export.
type ReportSource interface {
	ListReportsSince(ctx context.Context, since time.Time) ([]*domain.Report, error)
}
