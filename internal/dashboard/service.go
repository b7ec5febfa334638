// Package dashboard は月次注文ビューの組み立てロジックを提供する。
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/messdash/internal/model"
	"github.com/hitoshi/messdash/internal/session"
	"github.com/hitoshi/messdash/internal/summary"
)

// OrdersFetcher は月次注文取得のインターフェース。
type OrdersFetcher interface {
	GetOrders(ctx context.Context, whatsappID string, month model.Month) ([]model.Order, *model.FetchError)
}

// MonthView はダッシュボードに渡す1か月分の表示データを表す。
// Monthは要求された月をそのまま反映するため、月を切り替えた後に届いた
// 古いレスポンスは呼び出し側で現在の選択と比較して破棄できる。
type MonthView struct {
	Month  model.Month   `json:"month"`
	Orders []model.Order `json:"orders"`
	Totals model.Totals  `json:"totals"`
}

// Service は月次注文ビューのサービス層。
type Service struct {
	fetcher OrdersFetcher
	store   session.Store
	logger  *slog.Logger

	// now は現在時刻の取得処理。テスト用に差し替え可能。
	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(fetcher OrdersFetcher, store session.Store, logger *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// DefaultMonth はセッション開始時のデフォルト月（現在のカレンダー月）を返す。
func (s *Service) DefaultMonth() model.Month {
	return model.CurrentMonth(s.now())
}

// CurrentSession は保存済みスロットから現在のセッションを解決する。
func (s *Service) CurrentSession() (model.Session, bool) {
	stored, _ := s.store.Load()
	return session.Resolve(stored)
}

// View は指定月の注文ビューを組み立てる。
//
// 識別情報はcarried（リクエストで引き継がれた値）を優先し、保存済み
// セッションにフォールバックする。どちらからも解決できない場合は
// NO_SESSIONを返す（障害ではなくログイン画面へのナビゲーションシグナル）。
//
// 取得が終端エラーになった場合、ビューの注文と集計はゼロ状態で返る。
// エラーメッセージの横に古い集計が表示されることはない。
// 取得成功時は解決済みセッションをスロットに保存し直す（リロード対策）。
func (s *Service) View(ctx context.Context, carried model.Session, month model.Month) (MonthView, error) {
	emptyView := MonthView{Month: month, Orders: []model.Order{}}

	stored, _ := s.store.Load()
	sess, ok := session.Resolve(carried, stored)
	if !ok {
		return emptyView, model.NewNoSessionError()
	}

	orders, fetchErr := s.fetcher.GetOrders(ctx, sess.WhatsappID, month)
	if fetchErr != nil {
		s.logger.Error("月次注文の取得に失敗しました",
			slog.String("month", month.String()),
			slog.String("error", fetchErr.Error()),
		)
		return emptyView, fetchErr
	}

	sorted, totals := summary.Aggregate(orders)

	// リロード後もログイン状態を維持できるよう、成功のたびにスロットを更新する
	if err := s.store.Save(sess); err != nil {
		s.logger.Warn("セッションの再保存に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	return MonthView{Month: month, Orders: sorted, Totals: totals}, nil
}
