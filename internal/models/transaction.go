// internal/models/transaction.go
package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single bank statement row.
type Transaction struct {
	ID                int                 `json:"id" db:"id"`
	TransactionDate   time.Time           `json:"transactionDate" db:"transaction_date"`
	BookingDate       *time.Time          `json:"bookingDate,omitempty" db:"booking_date"`
	Title             string              `json:"title" db:"title"`
	Counterparty      string              `json:"counterparty" db:"counterparty"`
	Amount            decimal.Decimal     `json:"amount" db:"amount"`
	Currency          string              `json:"currency" db:"currency"`
	Account           string              `json:"account" db:"account"`
	AccountNumber     string              `json:"accountNumber,omitempty" db:"account_number"`
	BankName          string              `json:"bankName,omitempty" db:"bank_name"`
	Details           string              `json:"details,omitempty" db:"details"`
	TransactionNumber string              `json:"transactionNumber,omitempty" db:"transaction_number"`
	BlockedAmount     decimal.NullDecimal `json:"blockedAmount" db:"blocked_amount"`
	BlockedCurrency   string              `json:"blockedCurrency,omitempty" db:"blocked_currency"`
	PaymentAmount     decimal.NullDecimal `json:"paymentAmount" db:"payment_amount"`
	PaymentCurrency   string              `json:"paymentCurrency,omitempty" db:"payment_currency"`
	BalanceAfter      decimal.NullDecimal `json:"balanceAfterTransaction" db:"balance_after"`
	BalanceCurrency   string              `json:"balanceCurrency,omitempty" db:"balance_currency"`
	Category          string              `json:"category" db:"category"`
}

// IsUncategorized reports whether the category is blank. A JSON null decodes to "".
func (t Transaction) IsUncategorized() bool {
	return strings.TrimSpace(t.Category) == ""
}

// UnmarshalJSON accepts plain YYYY-MM-DD dates as sent by the frontend besides RFC3339.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		TransactionDate string  `json:"transactionDate"`
		BookingDate     *string `json:"bookingDate"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.TransactionDate != "" {
		d, err := ParseDate(aux.TransactionDate)
		if err != nil {
			return err
		}
		t.TransactionDate = d
	}
	if aux.BookingDate != nil && *aux.BookingDate != "" {
		d, err := ParseDate(*aux.BookingDate)
		if err != nil {
			return err
		}
		t.BookingDate = &d
	}
	return nil
}

// ParseDate parses YYYY-MM-DD first and falls back to RFC3339.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}

// TransactionFilter narrows GetTransactions. Month is only honoured together with Year.
type TransactionFilter struct {
	Year         *int
	Month        *int
	Account      string
	Counterparty string
}

// Date is a calendar date that decodes from YYYY-MM-DD or RFC3339.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalText(text []byte) error {
	t, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	return d.UnmarshalText([]byte(s))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}
