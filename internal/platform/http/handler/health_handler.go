// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check は依存先（Redis等）の疎通確認です。nilを返せば正常です。
type Check func(ctx context.Context) error

// checkTimeout は各Checkに与える上限時間です。
const checkTimeout = 2 * time.Second

// NewHealth は /healthz 用のハンドラーを返します。
// 登録されたCheckが1つでも失敗した場合、GETは503と "degraded" を返します。
// HEAD/OPTIONSは依存先を確認せず、プロセスの生存のみを示します。
func NewHealth(checks map[string]Check) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		switch c.Request.Method {
		case http.MethodHead:
			c.Status(http.StatusOK)
			return
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
			return
		}

		status, code := "ok", http.StatusOK
		results := make(map[string]string, len(names))
		for _, name := range names {
			ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
			err := checks[name](ctx)
			cancel()
			if err != nil {
				results[name] = err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		body := gin.H{"status": status}
		if len(results) > 0 {
			body["checks"] = results
		}
		c.JSON(code, body)
	}
}

// Health は依存先チェックを持たない /healthz ハンドラーです。
var Health = NewHealth(nil)
