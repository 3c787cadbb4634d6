package report

import (
	"context"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/mailer"
)

// Summarizer builds the summary of one user's period.
//
//go:generate mockgen -destination=mocks/mock_report.go -source=interfaces.go
type Summarizer interface {
	Aggregate(ctx context.Context, userID string, start, end time.Time) (*domain.Summary, error)
}

// InsightSource produces insights for a summary and never fails.
type InsightSource interface {
	Generate(ctx context.Context, summary *domain.Summary) domain.InsightOutcome
}

// Mailer delivers a rendered email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}
