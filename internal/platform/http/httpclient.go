package http

import (
	"net"
	"net/http"
	"time"
)

// ClientOption はNewHTTPClientの追加設定です。
type ClientOption func(*http.Client)

// WithUserAgent は全リクエストにUser-Agentヘッダーを付与します。
// リクエスト側で既に設定されている場合はそちらを優先します。
func WithUserAgent(ua string) ClientOption {
	return func(c *http.Client) {
		c.Transport = &userAgentTransport{ua: ua, next: c.Transport}
	}
}

// NewHTTPClient は外部API呼び出しやスクレイピング用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - Dialer.KeepAlive: 再利用可能なTCP接続の維持期間
//   - MaxIdleConns: 最大アイドル接続数（高負荷時の枯渇防止のため100）
//   - IdleConnTimeout: アイドル接続の維持期間
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にカスタムクライアントを使用すること
//   - プロバイダごとの呼び出し上限はcontextでも制御されるため、timeoutはその上限以下にする
func NewHTTPClient(timeout time.Duration, opts ...ClientOption) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	c := &http.Client{Timeout: timeout, Transport: t}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type userAgentTransport struct {
	ua   string
	next http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTripperは受け取ったリクエストを変更してはならない
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.ua)
	return t.next.RoundTrip(r)
}
