package notionsync

import (
	"strings"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/jomei/notionapi"
)

// Property names of the reports database.
const (
	PropReportID     = "Report ID"
	PropTitle        = "Title"
	PropUserID       = "User ID"
	PropStatus       = "Status"
	PropPeriod       = "Period"
	PropTotalIncome  = "Total Income"
	PropTotalExpense = "Total Expense"
	PropBalance      = "Available Balance"
	PropSavingsRate  = "Savings Rate"
	PropTxCount      = "Transactions"
	PropInsights     = "Insights"
	PropCreated      = "Created"
)

// maxRichTextLen is Notion's limit for a single rich text item.
const maxRichTextLen = 2000

func richText(content string) []notionapi.RichText {
	if len(content) > maxRichTextLen {
		content = content[:maxRichTextLen]
	}
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}

func dateOf(t time.Time) *notionapi.Date {
	d := notionapi.Date(t)
	return &d
}

// ReportToNotionProperties converts a report to the reports database schema.
// Figures are only set when the report has a summary.
func ReportToNotionProperties(r *domain.Report) notionapi.Properties {
	props := notionapi.Properties{
		PropReportID: notionapi.TitleProperty{Title: richText(r.ID)},
		PropTitle:    notionapi.RichTextProperty{RichText: richText(r.Title)},
		PropUserID:   notionapi.RichTextProperty{RichText: richText(r.UserID)},
		PropStatus:   notionapi.SelectProperty{Select: notionapi.Option{Name: string(r.Status)}},
		PropPeriod: notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: dateOf(r.PeriodStart),
				End:   dateOf(r.PeriodEnd),
			},
		},
		PropCreated: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: dateOf(r.CreatedAt)},
		},
	}

	if s := r.Payload.Summary; s != nil {
		props[PropTotalIncome] = notionapi.NumberProperty{Number: s.TotalIncome}
		props[PropTotalExpense] = notionapi.NumberProperty{Number: s.TotalExpense}
		props[PropBalance] = notionapi.NumberProperty{Number: s.AvailableBalance}
		props[PropSavingsRate] = notionapi.NumberProperty{Number: s.SavingsRate}
		props[PropTxCount] = notionapi.NumberProperty{Number: float64(s.TransactionCount)}
	}

	if text := insightsText(r.Payload.Insights); text != "" {
		props[PropInsights] = notionapi.RichTextProperty{RichText: richText(text)}
	}

	return props
}

func insightsText(o domain.InsightOutcome) string {
	if o.Status != domain.InsightsGenerated {
		return ""
	}
	lines := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, "• "+item)
	}
	return strings.Join(lines, "\n")
}

// extractReportID reads the title property that keys a page to a report.
func extractReportID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropReportID]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok && len(title.Title) > 0 {
			return title.Title[0].PlainText
		}
	}
	return ""
}
