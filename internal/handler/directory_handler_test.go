package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/messdash/internal/directory"
	"github.com/hitoshi/messdash/internal/model"
)

// fakeDirectoryService はDirectoryServiceInterfaceのテスト用実装。
type fakeDirectoryService struct {
	choices    directory.Choices
	choicesErr error

	session   model.Session
	selectErr error

	lastUserID string
}

func (f *fakeDirectoryService) Choices(ctx context.Context) (directory.Choices, error) {
	if f.choicesErr != nil {
		return directory.Choices{}, f.choicesErr
	}
	return f.choices, nil
}

func (f *fakeDirectoryService) SelectUser(ctx context.Context, userID string) (model.Session, error) {
	f.lastUserID = userID
	if f.selectErr != nil {
		return model.Session{}, f.selectErr
	}
	return f.session, nil
}

func TestListUsers_Success(t *testing.T) {
	svc := &fakeDirectoryService{choices: directory.Choices{
		Users: []model.User{
			{ID: "u1", Username: "Arjun", WhatsappID: "911"},
			{ID: "u2", Username: "Priya", WhatsappID: "912"},
		},
		DefaultUserID: "u1",
	}}
	h := NewDirectoryHandler(svc)

	req := httptest.NewRequest("GET", "/api/users", nil)
	rec := httptest.NewRecorder()
	h.ListUsers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータス = %d, want 200", rec.Code)
	}

	var body userListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスがJSONではない: %v", err)
	}
	if len(body.Users) != 2 {
		t.Errorf("ユーザー数 = %d, want 2", len(body.Users))
	}
	if body.DefaultUserID != "u1" {
		t.Errorf("default_user_id = %q, want u1", body.DefaultUserID)
	}
}

func TestListUsers_UpstreamFailure_Returns502(t *testing.T) {
	svc := &fakeDirectoryService{choicesErr: model.NewTransientServerError(503, "")}
	h := NewDirectoryHandler(svc)

	rec := httptest.NewRecorder()
	h.ListUsers(rec, httptest.NewRequest("GET", "/api/users", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("ステータス = %d, want 502", rec.Code)
	}

	var body apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスがJSONではない: %v", err)
	}
	if body.Code != model.ErrCodeUpstreamFailed {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUpstreamFailed)
	}
}

func TestLogin_Success(t *testing.T) {
	svc := &fakeDirectoryService{session: model.Session{UserName: "Priya", WhatsappID: "912"}}
	h := NewDirectoryHandler(svc)

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"user_id":"u2"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータス = %d, want 200", rec.Code)
	}
	if svc.lastUserID != "u2" {
		t.Errorf("選択されたID = %q, want u2", svc.lastUserID)
	}

	var body sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスがJSONではない: %v", err)
	}
	if body.UserName != "Priya" || body.WhatsappID != "912" {
		t.Errorf("セッション = %+v, want Priya/912", body)
	}
}

func TestLogin_InvalidBody_Returns400(t *testing.T) {
	h := NewDirectoryHandler(&fakeDirectoryService{})

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ステータス = %d, want 400", rec.Code)
	}

	var body apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスがJSONではない: %v", err)
	}
	if body.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidRequest)
	}
}

func TestLogin_UnknownUser_Returns404(t *testing.T) {
	svc := &fakeDirectoryService{selectErr: model.NewUserNotFoundError("nope")}
	h := NewDirectoryHandler(svc)

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"user_id":"nope"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("ステータス = %d, want 404", rec.Code)
	}
}

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{model.ErrCodeNoSession, http.StatusUnauthorized},
		{model.ErrCodeUserNotFound, http.StatusNotFound},
		{model.ErrCodeInvalidMonth, http.StatusBadRequest},
		{model.ErrCodeInvalidRequest, http.StatusBadRequest},
		{model.ErrCodeUpstreamFailed, http.StatusBadGateway},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := mapAPIErrorToHTTPStatus(&model.APIError{Code: tt.code})
			if got != tt.want {
				t.Errorf("mapAPIErrorToHTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
