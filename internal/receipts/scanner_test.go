package receipts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/fingenius/internal/ai"
	mock_ai "github.com/dvloznov/fingenius/internal/ai/mocks"
	"github.com/dvloznov/fingenius/internal/domain"
	mock_gcsuploader "github.com/dvloznov/fingenius/internal/gcsuploader/mocks"
	"github.com/dvloznov/fingenius/internal/receipts"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestScanner_Scan(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		err       error
		wantDraft *receipts.Draft
		wantError string
	}{
		{
			name: "valid receipt",
			response: "```json\n" + `{"title":"Walmart","amount":58.43,"date":"2024-01-15","description":"milk, eggs",` +
				`"category":"Groceries","type":"EXPENSE","paymentMethod":"card"}` + "\n```",
			wantDraft: &receipts.Draft{
				Title:         "Walmart",
				AmountMinor:   5843,
				Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				Description:   "milk, eggs",
				Category:      "groceries",
				Type:          domain.TransactionTypeExpense,
				PaymentMethod: domain.PaymentCard,
				ReceiptURL:    "gs://bucket/r.png",
			},
		},
		{
			name:     "defaults title and type",
			response: `{"amount":12,"date":"2024-02-01","type":"REFUND","paymentMethod":"crypto"}`,
			wantDraft: &receipts.Draft{
				Title:         "Receipt",
				AmountMinor:   1200,
				Date:          time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				Type:          domain.TransactionTypeExpense,
				PaymentMethod: domain.PaymentOther,
				ReceiptURL:    "gs://bucket/r.png",
			},
		},
		{
			name:      "missing amount",
			response:  `{"title":"Shop","date":"2024-01-15"}`,
			wantError: receipts.ErrMsgMissingFields,
		},
		{
			name:      "missing date",
			response:  `{"title":"Shop","amount":3.5}`,
			wantError: receipts.ErrMsgMissingFields,
		},
		{
			name:      "not a receipt",
			response:  `{"error":"Not a receipt"}`,
			wantError: "Not a receipt",
		},
		{
			name:      "not json",
			response:  "Sorry, I cannot read this.",
			wantError: receipts.ErrMsgInvalidResponse,
		},
		{
			name:      "bad date",
			response:  `{"amount":3.5,"date":"15/01/2024"}`,
			wantError: receipts.ErrMsgInvalidResponse,
		},
		{
			name:      "empty after cleaning",
			response:  "```json\n```",
			wantError: receipts.ErrMsgEmptyResponse,
		},
		{
			name:      "model error",
			err:       errors.New("429 rate limited"),
			wantError: receipts.ErrMsgUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			gen := mock_ai.NewMockTextGenerator(ctrl)
			gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(tt.response, tt.err)

			got := receipts.NewScanner(gen, nil).Scan(context.Background(), receipts.Image{
				Data:      pngHeader,
				SourceURL: "gs://bucket/r.png",
			})

			if tt.wantError != "" {
				assert.False(t, got.OK())
				assert.Equal(t, tt.wantError, got.Error)
				return
			}
			require.True(t, got.OK(), got.Error)
			assert.Equal(t, tt.wantDraft, got.Draft)
		})
	}
}

func TestScanner_Scan_RequestShape(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gen := mock_ai.NewMockTextGenerator(ctrl)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ai.Request) (string, error) {
			assert.True(t, req.JSON)
			require.NotNil(t, req.Temperature)
			assert.Equal(t, float32(0), *req.Temperature)
			require.NotNil(t, req.TopP)
			assert.Equal(t, float32(1), *req.TopP)
			require.NotNil(t, req.Image)
			assert.Equal(t, "image/png", req.Image.MIMEType)
			assert.Contains(t, req.Prompt, "YYYY-MM-DD")
			return `{"amount":1,"date":"2024-01-01"}`, nil
		})

	got := receipts.NewScanner(gen, nil).Scan(context.Background(), receipts.Image{Data: pngHeader})
	assert.True(t, got.OK())
}

func TestScanner_Scan_Unconfigured(t *testing.T) {
	got := receipts.NewScanner(nil, nil).Scan(context.Background(), receipts.Image{Data: pngHeader})
	assert.Equal(t, receipts.ErrMsgNotConfigured, got.Error)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	got = receipts.NewScanner(mock_ai.NewMockTextGenerator(ctrl), nil).Scan(context.Background(), receipts.Image{})
	assert.Equal(t, receipts.ErrMsgNoImage, got.Error)
}

func TestScanner_ScanFromGCS(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_gcsuploader.NewMockReceiptStore(ctrl)
	store.EXPECT().Fetch(gomock.Any(), "gs://bucket/receipts/u1/a.jpg").Return([]byte("jpeg-bytes"), nil)
	store.EXPECT().Fetch(gomock.Any(), "gs://bucket/missing.jpg").Return(nil, errors.New("object doesn't exist"))

	gen := mock_ai.NewMockTextGenerator(ctrl)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ai.Request) (string, error) {
			assert.Equal(t, "image/jpeg", req.Image.MIMEType)
			return `{"title":"Cafe","amount":4.2,"date":"2024-03-03"}`, nil
		})

	scanner := receipts.NewScanner(gen, store)

	got, err := scanner.ScanFromGCS(context.Background(), "gs://bucket/receipts/u1/a.jpg")
	require.NoError(t, err)
	require.True(t, got.OK())
	assert.Equal(t, "gs://bucket/receipts/u1/a.jpg", got.Draft.ReceiptURL)

	in := got.Draft.CreateInput()
	assert.Equal(t, 4.2, in.Amount)
	assert.Equal(t, "Cafe", in.Title)

	_, err = scanner.ScanFromGCS(context.Background(), "gs://bucket/missing.jpg")
	assert.Error(t, err)
}
