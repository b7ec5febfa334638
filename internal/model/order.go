package model

// Order は1件の食事注文を表す。
// バックエンドが所有するデータのスナップショットであり、月選択1回分の
// ライフタイムの間イミュータブルとして扱う。
type Order struct {
	// OrderDate は注文対象日（YYYY-MM-DD形式の日付文字列）。
	// ソートと表示の自然キーとして使用する。
	OrderDate string `json:"order_date"`
	// CreatedAt は注文レコードの作成時刻（バックエンド由来のタイムスタンプ文字列）。
	CreatedAt string `json:"created_at"`

	Breakfast bool `json:"breakfast"`
	Lunch     bool `json:"lunch"`
	Dinner    bool `json:"dinner"`

	// TotalAmount は注文金額。レスポンスにフィールドがない場合は0として扱う。
	TotalAmount float64 `json:"total_amount"`
	// Canceled がtrueの注文は一覧には表示されるが集計からは除外される。
	Canceled bool `json:"canceled"`
}

// Totals は非キャンセル注文から導出される集計値。
// 永続化せず、注文セットが変わるたびにゼロから再計算する。
type Totals struct {
	Breakfast int     `json:"breakfast"`
	Lunch     int     `json:"lunch"`
	Dinner    int     `json:"dinner"`
	Amount    float64 `json:"amount"`
}
