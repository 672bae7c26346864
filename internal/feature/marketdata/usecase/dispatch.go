package usecase

import (
	"context"
	"fmt"

	"stock_fetcher/internal/feature/marketdata/domain/entity"
)

// Operation は呼び出し元が指定できる操作の種類です。
type Operation string

const (
	OpQuote    Operation = "quote"
	OpIntraday Operation = "intraday"
	OpDaily    Operation = "daily"
	OpSearch   Operation = "search"
	OpOverview Operation = "overview"
	OpSectors  Operation = "sectors"
	OpBatch    Operation = "batch"
)

// Operations は対応している操作の一覧です。
var Operations = []Operation{OpQuote, OpIntraday, OpDaily, OpSearch, OpOverview, OpSectors, OpBatch}

// Params は操作ごとの追加パラメータです。
type Params struct {
	Interval string // intraday
	Days     int    // daily
}

// Dispatch は操作名に応じたメソッドを呼び出します。
// 未知の操作名やシンボル不足は呼び出し元のエラーとして、エラー文書とFetchErrorを返します。
// この場合Governorやプロバイダには一切触れません。
func (uc *FetchUsecase) Dispatch(ctx context.Context, kind string, symbols []string, p Params) (any, error) {
	switch Operation(kind) {
	case OpBatch:
		return uc.BatchQuotes(ctx, symbols), nil
	case OpSectors:
		return uc.Sectors(ctx), nil
	case OpQuote, OpIntraday, OpDaily, OpSearch, OpOverview:
	default:
		return entity.ErrorResult{Error: "Unknown endpoint: " + kind}, &entity.FetchError{
			Kind: entity.KindUnknownOperation,
			Op:   kind,
			Err:  fmt.Errorf("%w: %q", entity.ErrUnknownOperation, kind),
		}
	}

	if len(symbols) == 0 {
		return entity.ErrorResult{Error: entity.NoSymbolsMessage}, &entity.FetchError{
			Kind: entity.KindMalformedInput,
			Op:   kind,
			Err:  entity.ErrNoSymbols,
		}
	}

	switch Operation(kind) {
	case OpQuote:
		if len(symbols) > 1 {
			return uc.BatchQuotes(ctx, symbols), nil
		}
		return uc.Quote(ctx, symbols[0]), nil
	case OpIntraday:
		return uc.Intraday(ctx, symbols[0], p.Interval), nil
	case OpDaily:
		return uc.Daily(ctx, symbols[0], p.Days), nil
	case OpSearch:
		return uc.Search(ctx, symbols[0]), nil
	default:
		return uc.Overview(ctx, symbols[0]), nil
	}
}
