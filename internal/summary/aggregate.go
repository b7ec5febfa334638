// Package summary は注文一覧のソートと集計値の導出を提供する。
package summary

import (
	"sort"

	"github.com/hitoshi/messdash/internal/model"
)

// Aggregate は注文一覧をソートし、集計値を導出する純粋関数。
// 入力は変更せず、新しいソート済みスライスと新しい集計値を返す。
// 同一入力に対して常に同一の結果を返す。
//
// ソート: 注文日の降順。日付が同じ注文は入力時の相対順序を保つ
// （安定ソート、第2キーなし）。
//
// 集計: canceledでない注文のみが対象。朝食・昼食・夕食の各カウントは
// 該当フラグが立っている非キャンセル注文の数。金額は非キャンセル注文の
// 合計（フィールド欠落は0として扱われる）。
func Aggregate(orders []model.Order) ([]model.Order, model.Totals) {
	sorted := make([]model.Order, len(orders))
	copy(sorted, orders)

	// OrderDateはYYYY-MM-DD形式のため辞書順比較がそのまま日付順になる
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderDate > sorted[j].OrderDate
	})

	var totals model.Totals
	for _, o := range sorted {
		if o.Canceled {
			continue
		}
		if o.Breakfast {
			totals.Breakfast++
		}
		if o.Lunch {
			totals.Lunch++
		}
		if o.Dinner {
			totals.Dinner++
		}
		totals.Amount += o.TotalAmount
	}

	return sorted, totals
}
