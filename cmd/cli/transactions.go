package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dvloznov/fingenius/internal/app"
	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/repository"
	"github.com/dvloznov/fingenius/internal/transactions"
	"github.com/dvloznov/fingenius/internal/users"
)

func runRegister(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address reports are sent to")
	fs.Parse(args)

	user, err := a.Users.Register(ctx, users.NewUser{Name: *name, Email: *email})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s <%s> as %s\n", user.Name, user.Email, user.ID)
	return nil
}

// transactionFlags are shared by add-transaction and the import file format.
type transactionFlags struct {
	title, description, amount, txType, category, payment, date, receipt, interval string
	recurring                                                                      bool
}

func (f *transactionFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "Title")
	fs.StringVar(&f.description, "description", "", "Description")
	fs.StringVar(&f.amount, "amount", "", "Amount in major units, e.g. 12.50")
	fs.StringVar(&f.txType, "type", string(domain.TransactionTypeExpense), "INCOME or EXPENSE")
	fs.StringVar(&f.category, "category", "", "Category")
	fs.StringVar(&f.payment, "payment", "", "Payment method (CARD, CASH, BANK_TRANSFER, ...)")
	fs.StringVar(&f.date, "date", "", "Date as YYYY-MM-DD (default now)")
	fs.StringVar(&f.receipt, "receipt", "", "Receipt URL")
	fs.BoolVar(&f.recurring, "recurring", false, "Mark as recurring")
	fs.StringVar(&f.interval, "interval", "", "DAILY, WEEKLY, MONTHLY or YEARLY")
}

func (f *transactionFlags) input(now time.Time) (transactions.CreateInput, error) {
	amount, err := parseAmount(f.amount)
	if err != nil {
		return transactions.CreateInput{}, err
	}
	date, err := parseDate(f.date, now)
	if err != nil {
		return transactions.CreateInput{}, err
	}
	in := transactions.CreateInput{
		Title:         f.title,
		Description:   f.description,
		Amount:        amount,
		Type:          domain.TransactionType(strings.ToUpper(f.txType)),
		Category:      f.category,
		PaymentMethod: domain.ParsePaymentMethod(f.payment),
		ReceiptURL:    f.receipt,
		Date:          date,
		IsRecurring:   f.recurring,
	}
	if f.recurring {
		interval, err := domain.ParseRecurringInterval(f.interval)
		if err != nil {
			return transactions.CreateInput{}, err
		}
		in.RecurringInterval = interval
	}
	return in, nil
}

func runAddTransaction(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("add-transaction", flag.ExitOnError)
	userID := fs.String("user", "", "User ID")
	var tf transactionFlags
	tf.register(fs)
	fs.Parse(args)

	in, err := tf.input(time.Now())
	if err != nil {
		return err
	}
	tx, err := a.Transactions.Create(ctx, *userID, in)
	if err != nil {
		return err
	}

	fmt.Printf("Created transaction %s (%s %s)\n", tx.ID, tx.Type, formatMinor(tx.AmountMinor))
	if tx.NextOccurrenceAt != nil {
		fmt.Printf("Next occurrence: %s\n", tx.NextOccurrenceAt.Format(time.DateOnly))
	}
	return nil
}

func runListTransactions(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("list-transactions", flag.ExitOnError)
	userID := fs.String("user", "", "User ID")
	keyword := fs.String("keyword", "", "Match title or category")
	txType := fs.String("type", "", "INCOME or EXPENSE")
	recurring := fs.String("recurring", "", "true or false")
	page := fs.Int("page", 1, "Page number")
	size := fs.Int("size", 20, "Page size")
	fs.Parse(args)

	rec, err := parseOptionalBool(*recurring)
	if err != nil {
		return err
	}
	filter := repository.TransactionFilter{
		Keyword:   *keyword,
		Type:      domain.TransactionType(strings.ToUpper(*txType)),
		Recurring: rec,
	}

	txs, p, err := a.Transactions.List(ctx, *userID, filter, domain.Page{PageNumber: *page, PageSize: *size})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tTITLE\tRECURRING")
	for _, tx := range txs {
		recurringCol := "-"
		if tx.IsRecurring && tx.RecurringInterval != nil {
			recurringCol = string(*tx.RecurringInterval)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.OccurredAt.Format(time.DateOnly), tx.Type, formatMinor(tx.AmountMinor),
			tx.Category, tx.Title, recurringCol)
	}
	w.Flush()
	fmt.Printf("\nPage %d of %d (%d total)\n", p.PageNumber, p.TotalPages, p.TotalCount)
	return nil
}

// importRow is one entry of an import file.
type importRow struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
	Category      string  `json:"category"`
	PaymentMethod string  `json:"paymentMethod"`
	Date          string  `json:"date"`
}

func runImportTransactions(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("import-transactions", flag.ExitOnError)
	userID := fs.String("user", "", "User ID")
	file := fs.String("file", "", "JSON array of {title, amount, type, category, paymentMethod, date}")
	fs.Parse(args)

	inputs, err := readImportFile(*file, time.Now())
	if err != nil {
		return err
	}
	n, err := a.Transactions.BulkImport(ctx, *userID, inputs)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d transactions\n", n)
	return nil
}

func readImportFile(path string, now time.Time) ([]transactions.CreateInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	var rows []importRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}

	inputs := make([]transactions.CreateInput, 0, len(rows))
	for i, r := range rows {
		date, err := parseDate(r.Date, now)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		inputs = append(inputs, transactions.CreateInput{
			Title:         r.Title,
			Description:   r.Description,
			Amount:        r.Amount,
			Type:          domain.TransactionType(strings.ToUpper(r.Type)),
			Category:      r.Category,
			PaymentMethod: domain.ParsePaymentMethod(r.PaymentMethod),
			Date:          date,
		})
	}
	return inputs, nil
}

func runDuplicateTransaction(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("duplicate-transaction", flag.ExitOnError)
	userID := fs.String("user", "", "User ID")
	id := fs.String("id", "", "Transaction ID")
	fs.Parse(args)

	tx, err := a.Transactions.Duplicate(ctx, *userID, *id)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s: %s\n", tx.ID, tx.Title)
	return nil
}

func runDeleteTransactions(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("delete-transactions", flag.ExitOnError)
	userID := fs.String("user", "", "User ID")
	ids := fs.String("ids", "", "Comma separated transaction IDs")
	fs.Parse(args)

	n, err := a.Transactions.BulkDelete(ctx, *userID, splitIDs(*ids))
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d transactions\n", n)
	return nil
}
