package backend

// FetchResult はHTTPステータスコードに基づくフェッチ結果の分類。
type FetchResult int

const (
	// FetchResultOK はフェッチ成功（2xx）。
	FetchResultOK FetchResult = iota
	// FetchResultTransient はリトライ対象の一時的サーバーエラー（5xx）。
	FetchResultTransient
	// FetchResultTerminal はリトライしない終端エラー（5xx以外の非2xx）。
	FetchResultTerminal
)

// ClassifyHTTPStatus はHTTPステータスコードをフェッチ結果に分類する。
// リトライ対象は5xxのみ。それ以外の非2xxは即座に終端エラーとなる。
func ClassifyHTTPStatus(statusCode int) FetchResult {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return FetchResultOK
	case statusCode >= 500:
		return FetchResultTransient
	default:
		return FetchResultTerminal
	}
}
