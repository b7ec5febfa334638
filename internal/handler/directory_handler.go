package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/messdash/internal/directory"
	"github.com/hitoshi/messdash/internal/model"
)

// DirectoryServiceInterface はディレクトリハンドラーが必要とするサービスインターフェース。
type DirectoryServiceInterface interface {
	// Choices はログイン画面の選択肢（ユーザー一覧とデフォルト選択）を返す。
	Choices(ctx context.Context) (directory.Choices, error)
	// SelectUser は指定IDのユーザーを選択しセッションとして永続化する。
	SelectUser(ctx context.Context, userID string) (model.Session, error)
}

// DirectoryHandler はユーザーディレクトリとログインのHTTPハンドラー。
type DirectoryHandler struct {
	service DirectoryServiceInterface
}

// NewDirectoryHandler はDirectoryHandlerを生成する。
func NewDirectoryHandler(service DirectoryServiceInterface) *DirectoryHandler {
	return &DirectoryHandler{
		service: service,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	UserID string `json:"user_id"`
}

// userListResponse はユーザー一覧のAPIレスポンス。
type userListResponse struct {
	Users         []model.User `json:"users"`
	DefaultUserID string       `json:"default_user_id"`
}

// sessionResponse はログイン中ユーザーのAPIレスポンス。
type sessionResponse struct {
	UserName   string `json:"userName"`
	WhatsappID string `json:"whatsapp_id"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListUsers はログイン画面向けのユーザー一覧を返す。
// GET /api/users
func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	choices, err := h.service.Choices(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, userListResponse{
		Users:         choices.Users,
		DefaultUserID: choices.DefaultUserID,
	})
}

// Login はユーザー選択によるログインを処理する。
// POST /api/login
func (h *DirectoryHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディをJSONとして解釈できません"))
		return
	}

	sess, err := h.service.SelectUser(r.Context(), req.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, sessionResponse{
		UserName:   sess.UserName,
		WhatsappID: sess.WhatsappID,
	})
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// バックエンド取得の失敗はすべて502（UPSTREAM_FAILED）として返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	var fetchErr *model.FetchError
	if errors.As(err, &fetchErr) {
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewUpstreamError(fetchErr))
		return
	}

	// 想定外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeNoSession:
		return http.StatusUnauthorized
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidMonth, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeUpstreamFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
