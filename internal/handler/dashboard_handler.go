package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/messdash/internal/dashboard"
	"github.com/hitoshi/messdash/internal/model"
)

// DashboardServiceInterface はダッシュボードハンドラーが必要とするサービスインターフェース。
type DashboardServiceInterface interface {
	// View は指定月の注文ビュー（ソート済み注文と集計）を返す。
	View(ctx context.Context, carried model.Session, month model.Month) (dashboard.MonthView, error)
	// CurrentSession は保存済みセッションを返す。
	CurrentSession() (model.Session, bool)
	// DefaultMonth は現在の暦月を返す。
	DefaultMonth() model.Month
}

// DashboardHandler は注文ダッシュボードのHTTPハンドラー。
type DashboardHandler struct {
	service DashboardServiceInterface
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(service DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// Me はログイン中ユーザーのセッションを返す。
// GET /api/me
func (h *DashboardHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.service.CurrentSession()
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewNoSessionError())
		return
	}

	writeJSONResponse(w, http.StatusOK, sessionResponse{
		UserName:   sess.UserName,
		WhatsappID: sess.WhatsappID,
	})
}

// Orders は指定月の注文ビューを返す。
// GET /api/orders/{month}
//
// {month}は"YYYY-MM"または"current"（現在の暦月）。
// クエリパラメータusername・whatsapp_idで引き継ぎ識別情報を渡せる。
// 両方が揃っている場合のみ保存済みセッションより優先される。
func (h *DashboardHandler) Orders(w http.ResponseWriter, r *http.Request) {
	monthParam := chi.URLParam(r, "month")

	var month model.Month
	if monthParam == "current" {
		month = h.service.DefaultMonth()
	} else {
		var err error
		month, err = model.ParseMonth(monthParam)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidMonthError(monthParam))
			return
		}
	}

	carried := model.Session{
		UserName:   r.URL.Query().Get("username"),
		WhatsappID: r.URL.Query().Get("whatsapp_id"),
	}

	view, err := h.service.View(r.Context(), carried, month)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, view)
}
