package mailer

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/shopspring/decimal"
)

//go:embed templates/report.html.tmpl
var reportHTML string

//go:embed templates/report.txt.tmpl
var reportText string

var funcs = map[string]any{
	"money": formatMoney,
	"rate":  func(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) },
}

var (
	reportHTMLTmpl = htmltemplate.Must(htmltemplate.New("report.html").Funcs(funcs).Parse(reportHTML))
	reportTextTmpl = texttemplate.Must(texttemplate.New("report.txt").Funcs(funcs).Parse(reportText))
)

// ReportEmail is the data rendered into a report email.
type ReportEmail struct {
	UserName    string
	Title       string
	PeriodLabel string
	Summary     *domain.Summary
	Insights    []string
}

// RenderReport renders the report email for one recipient.
func RenderReport(to string, data ReportEmail) (Message, error) {
	if data.Summary == nil {
		return Message{}, fmt.Errorf("RenderReport: summary is required")
	}

	var html, text bytes.Buffer
	if err := reportHTMLTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("RenderReport: html: %w", err)
	}
	if err := reportTextTmpl.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("RenderReport: text: %w", err)
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your FinGenius Financial Report - %s", data.Summary.PeriodStart.Format("January 2006")),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// formatMoney renders 1234.5 as "$1,234.50".
func formatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	whole := d.Truncate(0).String()
	frac := d.Sub(d.Truncate(0)).Shift(2).Round(0).IntPart()

	var grouped []byte
	for i, c := range []byte(whole) {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, c)
	}

	return fmt.Sprintf("%s$%s.%02d", sign, grouped, frac)
}
