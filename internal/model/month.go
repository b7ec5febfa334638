package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Month は注文照会のクエリキーとなるカレンダー月（年+月、日なし）を表す。
// ワイヤ形式は7文字の "YYYY-MM" 文字列。
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth は "YYYY-MM" 形式の文字列をMonthにパースする。
// 7文字ちょうどで月が01〜12の範囲にない場合はエラーを返す。
func ParseMonth(s string) (Month, error) {
	if len(s) != 7 {
		return Month{}, fmt.Errorf("月の形式が不正です（YYYY-MM形式で指定してください）: %q", s)
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("月の形式が不正です（YYYY-MM形式で指定してください）: %q", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// CurrentMonth は指定時刻が属するカレンダー月を返す。
// セッション開始時のデフォルト月選択に使用する。
func CurrentMonth(now time.Time) Month {
	return Month{Year: now.Year(), Month: now.Month()}
}

// String はワイヤ形式 "YYYY-MM" を返す。
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalJSON はワイヤ形式 "YYYY-MM" のJSON文字列として出力する。
func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON は "YYYY-MM" のJSON文字列からパースする。
func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
