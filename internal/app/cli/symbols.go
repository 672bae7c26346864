package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var errInvalidJSON = errors.New("invalid json")

// ParseSymbols はJSONの銘柄引数を解釈します。
// 配列はそのまま、文字列や数値などのスカラーは1要素のリストとして扱います。
// nullは空のリストです。
func ParseSymbols(raw string) ([]string, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}

	items, ok := v.([]any)
	if !ok {
		if v == nil {
			return []string{}, nil
		}
		items = []any{v}
	}

	symbols := make([]string, 0, len(items))
	for _, it := range items {
		s, err := symbolString(it)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, nil
}

func symbolString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("symbol must be a string, got %T", v)
	}
}
