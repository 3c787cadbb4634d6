// Package receipts turns a receipt image into a draft transaction using the
// vision model. It never stores anything; callers decide whether to save the draft.
package receipts

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/fingenius/internal/ai"
	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/gcsuploader"
	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/dvloznov/fingenius/internal/transactions"
)

// Messages returned in ScanResult.Error.
const (
	ErrMsgNotConfigured   = "AI service is not configured"
	ErrMsgNoImage         = "Could not process file"
	ErrMsgUnavailable     = "Receipt scanning service unavailable"
	ErrMsgEmptyResponse   = "Could not read receipt content"
	ErrMsgInvalidResponse = "Invalid response format from AI service"
	ErrMsgMissingFields   = "Receipt missing required information"
)

const dateLayout = "2006-01-02"

// Image is the receipt to scan.
type Image struct {
	Data      []byte
	MIMEType  string
	SourceURL string
}

// Draft is a transaction suggested by a scan.
type Draft struct {
	Title         string
	AmountMinor   int64
	Date          time.Time
	Description   string
	Category      string
	Type          domain.TransactionType
	PaymentMethod domain.PaymentMethod
	ReceiptURL    string
}

// CreateInput converts the draft into a transaction the user can save.
func (d Draft) CreateInput() transactions.CreateInput {
	return transactions.CreateInput{
		Title:         d.Title,
		Description:   d.Description,
		Amount:        domain.ToMajorUnits(d.AmountMinor),
		Type:          d.Type,
		Category:      d.Category,
		PaymentMethod: d.PaymentMethod,
		ReceiptURL:    d.ReceiptURL,
		Date:          d.Date,
	}
}

// ScanResult holds either a Draft or a user-facing Error message.
type ScanResult struct {
	Draft *Draft
	Error string
}

// OK reports whether the scan produced a draft.
func (r ScanResult) OK() bool { return r.Draft != nil }

type receiptResponse struct {
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Type          string  `json:"type"`
	PaymentMethod string  `json:"paymentMethod"`
	Error         string  `json:"error"`
}

// Scanner extracts receipts with a vision-capable TextGenerator.
type Scanner struct {
	gen   ai.TextGenerator
	store gcsuploader.ReceiptStore
}

// NewScanner creates a scanner. store is only needed for ScanFromGCS and may be nil.
func NewScanner(gen ai.TextGenerator, store gcsuploader.ReceiptStore) *Scanner {
	return &Scanner{gen: gen, store: store}
}

// Scan asks the model to read the receipt. Failures are reported in the
// result, never as a Go error.
func (s *Scanner) Scan(ctx context.Context, img Image) ScanResult {
	log := logger.FromContext(ctx)

	if s.gen == nil {
		return ScanResult{Error: ErrMsgNotConfigured}
	}
	if len(img.Data) == 0 {
		return ScanResult{Error: ErrMsgNoImage}
	}

	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = DetectMIMEType(img.SourceURL, img.Data)
	}

	temperature, topP := float32(0), float32(1)
	raw, err := s.gen.Generate(ctx, ai.Request{
		Prompt:      receiptPrompt,
		Image:       &ai.Blob{MIMEType: mimeType, Data: img.Data},
		JSON:        true,
		Temperature: &temperature,
		TopP:        &topP,
	})
	if err != nil {
		log.Error().Err(err).Str("source", img.SourceURL).Msg("Receipt scan failed")
		return ScanResult{Error: ErrMsgUnavailable}
	}

	cleaned := ai.CleanJSON(raw)
	if cleaned == "" {
		return ScanResult{Error: ErrMsgEmptyResponse}
	}

	var resp receiptResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		log.Warn().Err(err).Str("raw_response", raw).Msg("Unparseable receipt response")
		return ScanResult{Error: ErrMsgInvalidResponse}
	}
	if resp.Error != "" {
		return ScanResult{Error: resp.Error}
	}
	if resp.Amount <= 0 || strings.TrimSpace(resp.Date) == "" {
		return ScanResult{Error: ErrMsgMissingFields}
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(resp.Date))
	if err != nil {
		log.Warn().Str("date", resp.Date).Msg("Receipt date is not YYYY-MM-DD")
		return ScanResult{Error: ErrMsgInvalidResponse}
	}

	draft := &Draft{
		Title:         strings.TrimSpace(resp.Title),
		AmountMinor:   domain.ToMinorUnits(resp.Amount),
		Date:          date,
		Description:   strings.TrimSpace(resp.Description),
		Category:      strings.ToLower(strings.TrimSpace(resp.Category)),
		Type:          domain.TransactionType(strings.ToUpper(strings.TrimSpace(resp.Type))),
		PaymentMethod: domain.ParsePaymentMethod(resp.PaymentMethod),
		ReceiptURL:    img.SourceURL,
	}
	if draft.Title == "" {
		draft.Title = "Receipt"
	}
	if !draft.Type.Valid() {
		draft.Type = domain.TransactionTypeExpense
	}

	log.Info().
		Str("title", draft.Title).
		Int64("amount_minor", draft.AmountMinor).
		Msg("Receipt scanned")

	return ScanResult{Draft: draft}
}

// ScanFromGCS downloads a previously uploaded receipt and scans it.
// Download failures are returned as errors.
func (s *Scanner) ScanFromGCS(ctx context.Context, gcsURI string) (ScanResult, error) {
	if s.store == nil {
		return ScanResult{}, fmt.Errorf("ScanFromGCS: no receipt store configured")
	}
	data, err := s.store.Fetch(ctx, gcsURI)
	if err != nil {
		return ScanResult{}, fmt.Errorf("ScanFromGCS: %w", err)
	}
	return s.Scan(ctx, Image{
		Data:      data,
		MIMEType:  DetectMIMEType(gcsURI, data),
		SourceURL: gcsURI,
	}), nil
}

// DetectMIMEType guesses the image type from the file extension, then the content.
func DetectMIMEType(name string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
