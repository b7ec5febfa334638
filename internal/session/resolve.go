package session

import "github.com/hitoshi/messdash/internal/model"

// Resolve は複数の候補から有効なセッションを優先順に解決する。
// 候補は優先度の高い順に渡す: 明示的な選択 → 画面遷移で引き継がれた値 →
// 保存済みセッション（リロード時のフォールバック）。
// 最初に完全に埋まっている候補が勝つ。どれも不完全な場合はfalseを返す。
func Resolve(candidates ...model.Session) (model.Session, bool) {
	for _, c := range candidates {
		if c.Complete() {
			return c, true
		}
	}
	return model.Session{}, false
}
