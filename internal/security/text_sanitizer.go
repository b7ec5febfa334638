// TextSanitizerService はバックエンド由来のテキスト（ユーザー名、エラーメッセージ等）を
// サニタイズし、XSS攻撃などのセキュリティリスクからUIを保護する。
// bluemondayのStrictPolicyを使用し、マークアップを一切通過させない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はテキストサニタイズ機能のインターフェースを定義する。
// ディレクトリ取得時のユーザー名と、バックエンド提供のエラーメッセージに適用する。
type TextSanitizerService interface {
	// SanitizeText は入力からHTMLタグを全て除去したプレーンテキストを返す。
	// 前後の空白も除去する。空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを一切持たないため、script等の危険なタグはもちろん、
// 装飾タグも全て除去される。バックエンド由来の表示文字列はプレーンテキストのみ許可する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は入力からHTMLタグを全て除去したプレーンテキストを返す。
// bluemondayはタグ除去後にエンティティエスケープを残すため、
// 表示用文字列としてアンエスケープして返す。
func (s *textSanitizer) SanitizeText(raw string) string {
	cleaned := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
