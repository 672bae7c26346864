// Package cli は株価取得コマンドのcobraコマンド定義です。
// 結果は標準出力にJSON（または表）で出力し、呼び出し元のエラーは標準エラーに
// {"error": "..."} の形で出力して終了コード1とします。
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"stock_fetcher/internal/feature/marketdata/domain/entity"
	"stock_fetcher/internal/feature/marketdata/usecase"
)

// InvalidJSONMessage は銘柄引数のJSONが不正な場合のメッセージです。
const InvalidJSONMessage = "Invalid JSON in symbols argument"

// ErrReported はエラー文書を出力済みであることを示します。mainは終了コード1で終了するだけです。
var ErrReported = errors.New("error already reported")

// Runner はコマンドが利用するユースケースです。
type Runner interface {
	Dispatch(ctx context.Context, kind string, symbols []string, p usecase.Params) (any, error)
	Stats() usecase.Summary
}

// RunnerFactory は設定を読み込んでRunnerを生成します。closeは終了時に呼ばれます。
type RunnerFactory func(ctx context.Context) (r Runner, closeFn func(), err error)

type options struct {
	interval string
	days     int
	format   string
}

// NewRootCommand はルートコマンドを生成します。
//
//	fetch '["AAPL","MSFT"]' batch
//	fetch '"AAPL"' daily --days 60 --format table
func NewRootCommand(newRunner RunnerFactory, secret func() string, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "fetch <symbols-json> [endpoint]",
		Short: "Fetch quotes, price series, search results and company overviews",
		Long: "Fetch market data for the JSON-encoded symbol list.\n" +
			"Endpoints: " + strings.Join(operationNames(), ", ") + " (default batch).",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), newRunner, opts, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.interval, "interval", string(entity.DefaultInterval), "intraday bar width (1min, 5min, 15min, 30min, 60min)")
	f.IntVar(&opts.days, "days", entity.DefaultDays, "number of days for the daily series")
	f.StringVar(&opts.format, "format", "json", "output format (json|table)")

	cmd.AddCommand(newTokenCommand(secret, stdout, stderr))
	return cmd
}

func run(ctx context.Context, newRunner RunnerFactory, opts *options, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return report(stderr, entity.NoSymbolsMessage)
	}
	if opts.format != "json" && opts.format != "table" {
		return report(stderr, fmt.Sprintf("unsupported format %q", opts.format))
	}

	symbols, err := ParseSymbols(args[0])
	if err != nil {
		if errors.Is(err, errInvalidJSON) {
			return report(stderr, InvalidJSONMessage)
		}
		return report(stderr, err.Error())
	}
	endpoint := string(usecase.OpBatch)
	if len(args) > 1 {
		endpoint = args[1]
	}

	r, closeFn, err := newRunner(ctx)
	if err != nil {
		return report(stderr, err.Error())
	}
	defer closeFn()

	res, err := r.Dispatch(ctx, endpoint, symbols, usecase.Params{Interval: opts.interval, Days: opts.days})
	logFinalStats(r.Stats())

	var fe *entity.FetchError
	switch {
	case err == nil:
	case errors.As(err, &fe) && fe.Kind == entity.KindUnknownOperation:
		// 未知の操作名はエラー文書を通常の結果として出力する
	case errors.As(err, &fe) && fe.Kind == entity.KindMalformedInput:
		return report(stderr, entity.NoSymbolsMessage)
	default:
		return report(stderr, err.Error())
	}

	if opts.format == "table" {
		return RenderTable(stdout, res)
	}
	return writeJSON(stdout, res)
}

func logFinalStats(s usecase.Summary) {
	slog.Info(fmt.Sprintf("Final Stats: %d requests, %.1f%% success, %.1fs uptime",
		s.Requests, s.SuccessRate, s.Uptime.Seconds()),
		"requests", s.Requests,
		"success_rate", s.SuccessRate,
		"uptime", s.Uptime.String(),
	)
}

// report はエラー文書を標準エラーに出力し、ErrReportedを返します。
func report(stderr io.Writer, msg string) error {
	b, err := json.Marshal(entity.ErrorResult{Error: msg})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stderr, string(b))
	return ErrReported
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func operationNames() []string {
	names := make([]string, 0, len(usecase.Operations))
	for _, op := range usecase.Operations {
		names = append(names, string(op))
	}
	return names
}
