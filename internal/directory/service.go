// Package directory はログイン画面のためのユーザー選択ロジックを提供する。
package directory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/messdash/internal/model"
	"github.com/hitoshi/messdash/internal/session"
)

// UserLister はユーザーディレクトリ取得のインターフェース。
type UserLister interface {
	ListUsers(ctx context.Context) ([]model.User, *model.FetchError)
}

// Choices はログイン画面に渡すユーザー選択肢を表す。
// ディレクトリが空の場合、DefaultUserIDは空のまま（選択は未設定となる）。
type Choices struct {
	Users         []model.User
	DefaultUserID string
}

// Service はユーザー選択とログインのサービス層。
type Service struct {
	lister UserLister
	store  session.Store
	logger *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(lister UserLister, store session.Store, logger *slog.Logger) *Service {
	return &Service{
		lister: lister,
		store:  store,
		logger: logger,
	}
}

// Choices はユーザー一覧とデフォルト選択（先頭要素）を返す。
// ディレクトリが空のときはデフォルト選択なしの空一覧を返す（エラーではない）。
func (s *Service) Choices(ctx context.Context) (Choices, error) {
	users, fetchErr := s.lister.ListUsers(ctx)
	if fetchErr != nil {
		return Choices{}, fetchErr
	}

	choices := Choices{Users: users}
	if len(users) > 0 {
		choices.DefaultUserID = users[0].ID
	}
	return choices, nil
}

// SelectUser は指定IDのユーザーを選択し、セッションとして永続化する。
// ディレクトリに存在しないIDはUSER_NOT_FOUNDエラーになる。
// 表示名が未設定のユーザーはIDを表示名として使う。
func (s *Service) SelectUser(ctx context.Context, userID string) (model.Session, error) {
	if userID == "" {
		return model.Session{}, model.NewInvalidRequestError("user_idが指定されていません")
	}

	users, fetchErr := s.lister.ListUsers(ctx)
	if fetchErr != nil {
		return model.Session{}, fetchErr
	}

	var selected *model.User
	for i := range users {
		if users[i].ID == userID {
			selected = &users[i]
			break
		}
	}
	if selected == nil {
		return model.Session{}, model.NewUserNotFoundError(userID)
	}

	userName := selected.Username
	if userName == "" {
		userName = selected.ID
	}
	if selected.WhatsappID == "" {
		return model.Session{}, model.NewInvalidRequestError(
			fmt.Sprintf("ユーザー %s にWhatsApp IDが登録されていません", userID),
		)
	}

	sess := model.Session{
		UserName:   userName,
		WhatsappID: selected.WhatsappID,
	}
	if err := s.store.Save(sess); err != nil {
		return model.Session{}, fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}

	s.logger.Info("ユーザーを選択しました",
		slog.String("user_id", userID),
		slog.String("user_name", sess.UserName),
	)

	return sess, nil
}
