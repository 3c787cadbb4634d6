package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType carries the direction of a transaction. Amounts are never signed.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// RecurringInterval is the cadence of a recurring transaction.
type RecurringInterval string

const (
	IntervalDaily   RecurringInterval = "DAILY"
	IntervalWeekly  RecurringInterval = "WEEKLY"
	IntervalMonthly RecurringInterval = "MONTHLY"
	IntervalYearly  RecurringInterval = "YEARLY"
)

// Valid reports whether i is a known recurring interval.
func (i RecurringInterval) Valid() bool {
	switch i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalYearly:
		return true
	}
	return false
}

// ParseRecurringInterval normalizes user input ("monthly", " WEEKLY ") into an interval.
func ParseRecurringInterval(s string) (RecurringInterval, error) {
	i := RecurringInterval(strings.ToUpper(strings.TrimSpace(s)))
	if !i.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}
	return i, nil
}

// PaymentMethod records how a transaction was paid.
type PaymentMethod string

const (
	PaymentCard          PaymentMethod = "CARD"
	PaymentBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMobilePayment PaymentMethod = "MOBILE_PAYMENT"
	PaymentAutoDebit     PaymentMethod = "AUTO_DEBIT"
	PaymentCash          PaymentMethod = "CASH"
	PaymentOther         PaymentMethod = "OTHER"
)

// ParsePaymentMethod maps free text to a PaymentMethod, falling back to CASH
// for empty input and OTHER for anything unrecognised.
func ParsePaymentMethod(s string) PaymentMethod {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymentCard, PaymentBankTransfer, PaymentMobilePayment, PaymentAutoDebit, PaymentCash, PaymentOther:
		return m
	case "":
		return PaymentCash
	default:
		return PaymentOther
	}
}

// Transaction is a single income or expense entry owned by one user.
type Transaction struct {
	ID          string
	UserID      string
	Title       string
	Description string

	// AmountMinor is the amount in minor units (cents). Always >= 0.
	AmountMinor int64
	Type        TransactionType
	Category    string

	PaymentMethod PaymentMethod
	ReceiptURL    string

	OccurredAt time.Time

	IsRecurring       bool
	RecurringInterval *RecurringInterval
	NextOccurrenceAt  *time.Time
	LastProcessedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the structural invariants of a transaction.
// Interval and next occurrence must be present exactly when the transaction recurs.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidTransaction)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTransaction)
	}
	if t.AmountMinor < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidTransaction)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	}
	if t.OccurredAt.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidTransaction)
	}

	if t.IsRecurring {
		if t.RecurringInterval == nil || t.NextOccurrenceAt == nil {
			return fmt.Errorf("%w: recurring transaction needs interval and next occurrence", ErrInvalidTransaction)
		}
		if !t.RecurringInterval.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidInterval, *t.RecurringInterval)
		}
	} else if t.RecurringInterval != nil || t.NextOccurrenceAt != nil {
		return fmt.Errorf("%w: non-recurring transaction carries recurrence fields", ErrInvalidTransaction)
	}

	return nil
}

// ClearRecurrence drops every recurrence field.
func (t *Transaction) ClearRecurrence() {
	t.IsRecurring = false
	t.RecurringInterval = nil
	t.NextOccurrenceAt = nil
}
