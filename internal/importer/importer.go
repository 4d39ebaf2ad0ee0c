// internal/importer/importer.go
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"finance-predictor/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// Bank statement layout.
const (
	headerRows = 15
	delimiter  = ';'
)

const (
	colDate = iota
	colBookingDate
	colCounterparty
	colTitle
	colAccountNumber
	colBankName
	colDetails
	colTransactionNumber
	colAmount
	colCurrency
	colBlockedAmount
	colBlockedCurrency
	colPaymentAmount
	colPaymentCurrency
	colAccount
	colBalanceAfter
	colBalanceCurrency
)

var dateLayouts = []string{"2006-01-02", "02.01.2006", "02-01-2006", "2006/01/02"}

// RowError describes a statement row that could not be parsed.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result holds the parsed transactions and the rows that were skipped.
type Result struct {
	Transactions []models.Transaction `json:"transactions"`
	Skipped      []string             `json:"skipped,omitempty"`
}

// Parse reads a Windows-1250 encoded bank statement.
// It fails only when no data row can be parsed.
func Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(charmap.Windows1250.NewDecoder().Reader(r))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	result := &Result{Transactions: []models.Transaction{}}
	var rowErrs []error
	line := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		if line <= headerRows || blank(record) {
			continue
		}

		t, err := parseRecord(record)
		if err != nil {
			rowErr := RowError{Line: line, Err: err}
			rowErrs = append(rowErrs, rowErr)
			result.Skipped = append(result.Skipped, rowErr.Error())
			continue
		}
		result.Transactions = append(result.Transactions, t)
	}

	if len(result.Transactions) == 0 {
		if len(rowErrs) == 0 {
			return nil, errors.New("statement contains no transactions")
		}
		return nil, fmt.Errorf("no statement row could be parsed: %w", errors.Join(rowErrs...))
	}
	return result, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRecord(record []string) (models.Transaction, error) {
	var t models.Transaction

	date, err := ParseDate(field(record, colDate))
	if err != nil {
		return t, fmt.Errorf("transaction date: %w", err)
	}
	amount, err := ParseAmount(field(record, colAmount))
	if err != nil {
		return t, fmt.Errorf("amount: %w", err)
	}

	t = models.Transaction{
		TransactionDate:   date,
		Counterparty:      field(record, colCounterparty),
		Title:             field(record, colTitle),
		AccountNumber:     field(record, colAccountNumber),
		BankName:          field(record, colBankName),
		Details:           field(record, colDetails),
		TransactionNumber: field(record, colTransactionNumber),
		Amount:            amount,
		Currency:          field(record, colCurrency),
		BlockedCurrency:   field(record, colBlockedCurrency),
		PaymentCurrency:   field(record, colPaymentCurrency),
		Account:           field(record, colAccount),
		BalanceCurrency:   field(record, colBalanceCurrency),
	}

	if s := field(record, colBookingDate); s != "" {
		booking, err := ParseDate(s)
		if err != nil {
			return t, fmt.Errorf("booking date: %w", err)
		}
		t.BookingDate = &booking
	}
	if t.BlockedAmount, err = optionalAmount(field(record, colBlockedAmount)); err != nil {
		return t, fmt.Errorf("blocked amount: %w", err)
	}
	if t.PaymentAmount, err = optionalAmount(field(record, colPaymentAmount)); err != nil {
		return t, fmt.Errorf("payment amount: %w", err)
	}
	if t.BalanceAfter, err = optionalAmount(field(record, colBalanceAfter)); err != nil {
		return t, fmt.Errorf("balance after: %w", err)
	}
	return t, nil
}

func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// ParseAmount accepts a decimal comma and space or non-breaking space thousand separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(cleaned)
}

func optionalAmount(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
