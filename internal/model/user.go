// Package model はドメインモデルを定義する。
package model

// User はバックエンドのユーザーディレクトリに登録された利用者を表す。
// ディレクトリが管理するリードオンリーのデータであり、クライアント側で変更しない。
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	WhatsappID string `json:"whatsapp_id"`
}

// Session は現在選択中の利用者の識別情報を表す。
// 単一の永続スロットに保存され、同時に有効なセッションは常に1つだけ。
// 両フィールドが揃っている場合のみ有効として扱う（部分的なセッションは存在しない）。
type Session struct {
	UserName   string `json:"userName"`
	WhatsappID string `json:"whatsapp_id"`
}

// Complete はセッションが完全に埋まっているかを返す。
// どちらかのフィールドが欠けているセッションは「不在」と同じ扱いになる。
func (s Session) Complete() bool {
	return s.UserName != "" && s.WhatsappID != ""
}
