package model

import "fmt"

// FetchErrorKind はバックエンド取得エラーの分類を表す。
type FetchErrorKind string

const (
	// FetchTransient はリトライ対象の一時的サーバーエラー（5xx）。
	// リトライ上限に達した時点で終端エラーとして呼び出し元に渡る。
	FetchTransient FetchErrorKind = "transient"
	// FetchTerminal はリトライしない終端HTTPエラー（5xx以外の非2xx）。
	FetchTerminal FetchErrorKind = "terminal"
	// FetchNetwork はレスポンスが一切得られなかったネットワークエラー。
	FetchNetwork FetchErrorKind = "network"
)

// FetchError はバックエンド取得の失敗を表す。
// ステータスコードと、あればサーバー提供のエラーメッセージを保持する。
// 不正なレスポンスボディ（MalformedResponse）はエラーにせず空リストに
// 縮退させるため、ここには現れない。
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int // ネットワークエラーの場合は0
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] status %d: %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// NewTransientServerError は一時的サーバーエラー（5xx）を生成する。
func NewTransientServerError(statusCode int, message string) *FetchError {
	if message == "" {
		message = fmt.Sprintf("サーバーエラーが発生しました（ステータス: %d）", statusCode)
	}
	return &FetchError{Kind: FetchTransient, StatusCode: statusCode, Message: message}
}

// NewTerminalHTTPError は終端HTTPエラー（5xx以外の非2xx）を生成する。
// messageにはサーバー提供のerrorフィールドの値を渡す。空の場合は汎用文言を使う。
func NewTerminalHTTPError(statusCode int, message string) *FetchError {
	if message == "" {
		message = fmt.Sprintf("注文データの取得に失敗しました（ステータス: %d）", statusCode)
	}
	return &FetchError{Kind: FetchTerminal, StatusCode: statusCode, Message: message}
}

// NewNetworkError はレスポンスが得られなかった場合のエラーを生成する。
func NewNetworkError(cause error) *FetchError {
	return &FetchError{Kind: FetchNetwork, Message: cause.Error()}
}

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, upstream, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeNoSession      = "NO_SESSION"
	ErrCodeUserNotFound   = "USER_NOT_FOUND"
	ErrCodeInvalidMonth   = "INVALID_MONTH"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeUpstreamFailed = "UPSTREAM_FAILED"
)

// NewNoSessionError はセッション不在を表すエラーを生成する。
// これは障害ではなくログイン画面へ戻るためのナビゲーションシグナルである。
func NewNoSessionError() *APIError {
	return &APIError{
		Code:     ErrCodeNoSession,
		Message:  "ログイン中のユーザーがいません。",
		Category: "auth",
		Action:   "ユーザーを選択してログインしてください。",
	}
}

// NewUserNotFoundError は指定IDのユーザーがディレクトリに存在しない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "validation",
		Action:   "ユーザー一覧を再読み込みして選択し直してください。",
	}
}

// NewInvalidMonthError は月指定が不正な場合のエラーを生成する。
func NewInvalidMonthError(month string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMonth,
		Message:  fmt.Sprintf("無効な月指定です: %s", month),
		Category: "validation",
		Action:   "月はYYYY-MM形式で指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディ等が不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewUpstreamError はバックエンド取得の失敗をAPIエラーに変換する。
// サーバー提供のメッセージがあればそれをそのまま利用者向け文言として使う。
func NewUpstreamError(fetchErr *FetchError) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFailed,
		Message:  fetchErr.Message,
		Category: "upstream",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
