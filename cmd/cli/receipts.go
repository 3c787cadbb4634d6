package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/fingenius/internal/app"
	"github.com/dvloznov/fingenius/internal/receipts"
)

func runUploadReceipt(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("upload-receipt", flag.ExitOnError)
	userID := fs.String("user", "", "User ID")
	file := fs.String("file", "", "Path to the receipt image")
	fs.Parse(args)

	if a.Receipts == nil {
		return fmt.Errorf("GCS_BUCKET is not set")
	}
	uri, err := a.Receipts.UploadReceipt(ctx, *userID, *file)
	if err != nil {
		return err
	}
	fmt.Println(uri)
	return nil
}

func runScanReceipt(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("scan-receipt", flag.ExitOnError)
	file := fs.String("file", "", "Local receipt image")
	gcsURI := fs.String("gcs-uri", "", "Receipt already uploaded to GCS")
	save := fs.Bool("save", false, "Create a transaction from the draft")
	userID := fs.String("user", "", "User ID (required with -save)")
	fs.Parse(args)

	var (
		result receipts.ScanResult
		err    error
	)
	switch {
	case *gcsURI != "":
		result, err = a.Scanner.ScanFromGCS(ctx, *gcsURI)
	case *file != "":
		var data []byte
		data, err = os.ReadFile(*file)
		if err == nil {
			result = a.Scanner.Scan(ctx, receipts.Image{Data: data, MIMEType: receipts.DetectMIMEType(*file, data)})
		}
	default:
		return fmt.Errorf("one of -file or -gcs-uri is required")
	}
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("scan failed: %s", result.Error)
	}

	d := result.Draft
	fmt.Printf("Title:    %s\n", d.Title)
	fmt.Printf("Amount:   %s\n", formatMinor(d.AmountMinor))
	fmt.Printf("Date:     %s\n", d.Date.Format(time.DateOnly))
	fmt.Printf("Type:     %s\n", d.Type)
	fmt.Printf("Category: %s\n", d.Category)
	fmt.Printf("Payment:  %s\n", d.PaymentMethod)

	if !*save {
		return nil
	}
	tx, err := a.Transactions.Create(ctx, *userID, d.CreateInput())
	if err != nil {
		return err
	}
	fmt.Printf("Created transaction %s\n", tx.ID)
	return nil
}
