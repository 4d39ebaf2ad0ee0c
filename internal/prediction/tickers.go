// internal/prediction/tickers.go
package prediction

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"finance-predictor/internal/models"
)

// TickerProvider serves the S&P 500 constituent list from a `;` separated file.
// The file is read on first use.
type TickerProvider struct {
	path string

	once    sync.Once
	tickers []models.CompanyTicker
	err     error
}

func NewTickerProvider(path string) *TickerProvider {
	return &TickerProvider{path: path}
}

func (p *TickerProvider) All() ([]models.CompanyTicker, error) {
	p.once.Do(func() {
		f, err := os.Open(p.path)
		if err != nil {
			p.err = fmt.Errorf("open ticker list: %w", err)
			return
		}
		defer f.Close()
		p.tickers, p.err = ParseTickers(f)
	})
	if p.err != nil {
		return nil, p.err
	}
	out := make([]models.CompanyTicker, len(p.tickers))
	copy(out, p.tickers)
	return out, nil
}

// ParseTickers reads `ticker;name` lines after a header line.
// Lines with fewer than two fields are ignored.
func ParseTickers(r io.Reader) ([]models.CompanyTicker, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	tickers := []models.CompanyTicker{}
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ticker list: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(record) < 2 {
			continue
		}
		ticker := strings.TrimSpace(record[0])
		if ticker == "" {
			continue
		}
		tickers = append(tickers, models.CompanyTicker{Ticker: ticker, Name: strings.TrimSpace(record[1])})
	}
	return tickers, nil
}
