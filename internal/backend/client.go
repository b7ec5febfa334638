// Package backend は注文バックエンドAPIのHTTPクライアントを提供する。
// ユーザーディレクトリの取得と月次注文の取得を、上限付きリトライ付きで実行する。
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hitoshi/messdash/internal/model"
)

// maxBodySize はレスポンスボディの最大読み取りサイズ（1MB）。
const maxBodySize = 1 << 20

// TextSanitizer はバックエンド由来テキストのサニタイズインターフェース。
type TextSanitizer interface {
	SanitizeText(raw string) string
}

// MetricsRecorder はフェッチメトリクス収集のインターフェース。
type MetricsRecorder interface {
	RecordFetchAttempt(endpoint string)
	RecordFetchRetry(endpoint string)
	RecordFetchFailure(endpoint string, kind string)
	RecordHTTPStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
}

// Client は注文バックエンドAPIのクライアント。
// 一時的サーバーエラー（5xx）に対して上限付きでリトライする。
// リトライは再帰ではなく明示的な試行カウンタ付きループで行う。
type Client struct {
	httpClient  *http.Client
	baseURL     string
	sanitizer   TextSanitizer
	metrics     MetricsRecorder
	logger      *slog.Logger
	maxAttempts int
	retryDelay  time.Duration

	// sleep はリトライ間の待機処理。テスト用に差し替え可能。
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient はClientの新しいインスタンスを生成する。
// retryDelayはディレクトリ取得のリトライ間隔として使用される。
// 注文取得はリトライ間隔なしで即座に再試行する（呼び出し箇所ごとの
// 挙動差は外部から観測可能なため意図的に統一していない）。
func NewClient(
	httpClient *http.Client,
	baseURL string,
	sanitizer TextSanitizer,
	metrics MetricsRecorder,
	logger *slog.Logger,
	maxAttempts int,
	retryDelay time.Duration,
) *Client {
	// 試行回数は最低1回。0以下だとリトライループが1度も回らない
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		sanitizer:   sanitizer,
		metrics:     metrics,
		logger:      logger,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		sleep:       sleepWithContext,
	}
}

// sleepWithContext はコンテキストのキャンセルを尊重して待機する。
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ListUsers はユーザーディレクトリを取得する。
// GET {base}/users を最大maxAttempts回、一時的エラー時は固定のretryDelayを
// 挟んで再試行する。レスポンスのusersフィールドが欠落・不正な場合は
// エラーではなく空リストに縮退させる（意図的な寛容ポリシー）。
// ユーザー名はUIに渡す前にサニタイズされる。
func (c *Client) ListUsers(ctx context.Context) ([]model.User, *model.FetchError) {
	body, fetchErr := c.fetchJSON(ctx, "users", "/users", c.retryDelay)
	if fetchErr != nil {
		return nil, fetchErr
	}

	var envelope struct {
		Users json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.logger.Warn("ディレクトリレスポンスのパースに失敗したため空リストとして扱います",
			slog.String("error", err.Error()),
		)
		return []model.User{}, nil
	}

	var users []model.User
	if len(envelope.Users) > 0 {
		if err := json.Unmarshal(envelope.Users, &users); err != nil {
			c.logger.Warn("usersフィールドが配列でないため空リストとして扱います",
				slog.String("error", err.Error()),
			)
			return []model.User{}, nil
		}
	}
	if users == nil {
		users = []model.User{}
	}

	for i := range users {
		users[i].Username = c.sanitizer.SanitizeText(users[i].Username)
	}

	c.logger.Info("ユーザーディレクトリを取得しました",
		slog.Int("user_count", len(users)),
	)

	return users, nil
}

// GetOrders は指定ユーザーの指定月の注文一覧を取得する。
// whatsappIDが空の場合はネットワーク呼び出しを行わず、エラーなしで
// 空の結果を返す（ガードでありエラーではない）。
// GET {base}/orders/{whatsapp_id}/{yyyy-mm} を最大maxAttempts回、
// 一時的エラー時は待機なしで即座に再試行する。
// ordersフィールドの欠落・不正はディレクトリ取得と同じ寛容ポリシーで空に縮退させる。
func (c *Client) GetOrders(ctx context.Context, whatsappID string, month model.Month) ([]model.Order, *model.FetchError) {
	if whatsappID == "" {
		return []model.Order{}, nil
	}

	path := "/orders/" + url.PathEscape(whatsappID) + "/" + month.String()
	body, fetchErr := c.fetchJSON(ctx, "orders", path, 0)
	if fetchErr != nil {
		return nil, fetchErr
	}

	var envelope struct {
		Orders json.RawMessage `json:"orders"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.logger.Warn("注文レスポンスのパースに失敗したため空リストとして扱います",
			slog.String("error", err.Error()),
		)
		return []model.Order{}, nil
	}

	var orders []model.Order
	if len(envelope.Orders) > 0 {
		if err := json.Unmarshal(envelope.Orders, &orders); err != nil {
			c.logger.Warn("ordersフィールドが配列でないため空リストとして扱います",
				slog.String("error", err.Error()),
			)
			return []model.Order{}, nil
		}
	}
	if orders == nil {
		orders = []model.Order{}
	}

	c.logger.Info("月次注文を取得しました",
		slog.String("month", month.String()),
		slog.Int("order_count", len(orders)),
	)

	return orders, nil
}

// fetchJSON は指定パスへのGETを上限付きリトライで実行し、成功時のボディを返す。
// endpointはログ・メトリクス用のラベル（"users" / "orders"）。
// delayが正の場合、一時的エラー後の再試行前にその時間だけ待機する。
// ネットワークエラー（レスポンスなし）はどちらの呼び出し経路でも終端エラーであり
// 再試行しない。試行を使い切った場合は最後の一時的エラーが終端エラーとして返る。
func (c *Client) fetchJSON(ctx context.Context, endpoint, path string, delay time.Duration) ([]byte, *model.FetchError) {
	reqURL := c.baseURL + path

	var lastErr *model.FetchError
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		c.recordAttempt(endpoint)
		start := time.Now()

		body, status, fetchErr := c.doOnce(ctx, reqURL)
		c.recordLatency(time.Since(start))

		if fetchErr != nil && fetchErr.Kind == model.FetchNetwork {
			c.logger.Error("バックエンドへのリクエストに失敗しました",
				slog.String("path", path),
				slog.String("error", fetchErr.Message),
			)
			c.recordFailure(endpoint, fetchErr.Kind)
			return nil, fetchErr
		}

		c.recordStatus(status)

		switch ClassifyHTTPStatus(status) {
		case FetchResultOK:
			return body, nil

		case FetchResultTransient:
			lastErr = model.NewTransientServerError(status, c.serverMessage(body))
			if attempt < c.maxAttempts {
				c.logger.Warn("一時的サーバーエラーのため再試行します",
					slog.String("path", path),
					slog.Int("http_status", status),
					slog.Int("attempt", attempt),
				)
				c.recordRetry(endpoint)
				if delay > 0 {
					if err := c.sleep(ctx, delay); err != nil {
						c.recordFailure(endpoint, model.FetchNetwork)
						return nil, model.NewNetworkError(err)
					}
				}
				continue
			}

		case FetchResultTerminal:
			terminalErr := model.NewTerminalHTTPError(status, c.serverMessage(body))
			c.logger.Error("バックエンドが終端エラーを返しました",
				slog.String("path", path),
				slog.Int("http_status", status),
			)
			c.recordFailure(endpoint, terminalErr.Kind)
			return nil, terminalErr
		}
	}

	c.logger.Error("リトライ上限に達しました",
		slog.String("path", path),
		slog.Int("max_attempts", c.maxAttempts),
		slog.Int("http_status", lastErr.StatusCode),
	)
	c.recordFailure(endpoint, lastErr.Kind)
	return nil, lastErr
}

// doOnce は1回のHTTP GETを実行し、ボディとステータスコードを返す。
// レスポンスが得られなかった場合はネットワークエラーを返す。
func (c *Client) doOnce(ctx context.Context, reqURL string) ([]byte, int, *model.FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, model.NewNetworkError(fmt.Errorf("リクエスト作成に失敗: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Messdash/1.0 Dashboard")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, model.NewNetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, 0, model.NewNetworkError(fmt.Errorf("レスポンス読み取り失敗: %w", err))
	}

	return body, resp.StatusCode, nil
}

// serverMessage は非2xxレスポンスのボディからサーバー提供のerrorフィールドを取り出す。
// フィールドがない、またはボディがJSONでない場合は空文字列を返す。
// メッセージはUIに渡る前にサニタイズされる。
func (c *Client) serverMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return c.sanitizer.SanitizeText(payload.Error)
}

func (c *Client) recordAttempt(endpoint string) {
	if c.metrics != nil {
		c.metrics.RecordFetchAttempt(endpoint)
	}
}

func (c *Client) recordRetry(endpoint string) {
	if c.metrics != nil {
		c.metrics.RecordFetchRetry(endpoint)
	}
}

func (c *Client) recordFailure(endpoint string, kind model.FetchErrorKind) {
	if c.metrics != nil {
		c.metrics.RecordFetchFailure(endpoint, string(kind))
	}
}

func (c *Client) recordStatus(statusCode int) {
	if c.metrics != nil {
		c.metrics.RecordHTTPStatus(statusCode)
	}
}

func (c *Client) recordLatency(d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordFetchLatency(d)
	}
}
