// Package validation gates provider records before they reach callers.
package validation

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"stock_fetcher/internal/feature/marketdata/domain/entity"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// CheckQuote reports why a quote is unacceptable, or nil when it is valid.
// A quote needs a symbol, a strictly positive price and no error marker.
func CheckQuote(q entity.Quote) error {
	if err := instance().Struct(q); err != nil {
		return fmt.Errorf("%w: quote %q: %v", entity.ErrInvalidRecord, q.Symbol, err)
	}
	return nil
}

// CheckOverview reports why an overview is unacceptable, or nil when it is valid.
// An empty company name is accepted.
func CheckOverview(o entity.Overview) error {
	if err := instance().Struct(o); err != nil {
		return fmt.Errorf("%w: overview %q: %v", entity.ErrInvalidRecord, o.Symbol, err)
	}
	return nil
}

// QuoteValid is the boolean form of CheckQuote.
func QuoteValid(q entity.Quote) bool { return CheckQuote(q) == nil }

// OverviewValid is the boolean form of CheckOverview.
func OverviewValid(o entity.Overview) bool { return CheckOverview(o) == nil }
