// Package session は現在選択中ユーザーの単一永続スロットを管理する。
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/hitoshi/messdash/internal/model"
)

// Store はセッションスロットの読み書きインターフェース。
type Store interface {
	// Load は保存されたセッションを返す。
	// スロットが存在しない、読めない、壊れている、または部分的にしか
	// 埋まっていない場合はfalseを返す（エラーにはしない）。
	Load() (model.Session, bool)

	// Save は完全に埋まったセッションをスロットに書き込む。
	// 部分的なセッションは拒否する。書き込みはアトミックに行われ、
	// 既存の値は上書きによってのみ消える。
	Save(session model.Session) error
}

// FileStore は単一のJSONファイルを永続スロットとするStoreの実装。
// プロセス再起動をまたいでセッションが維持される。
type FileStore struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

// NewFileStore はFileStoreの新しいインスタンスを生成する。
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Load は保存されたセッションを読み込む。
// ファイル欠落・パース失敗・不完全なセッションはすべて「不在」として扱い、
// エラーは呼び出し元に伝播させない（ログには記録する）。
func (s *FileStore) Load() (model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("セッションファイルの読み取りに失敗したため不在として扱います",
				slog.String("path", s.path),
				slog.String("error", err.Error()),
			)
		}
		return model.Session{}, false
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn("セッションファイルが壊れているため不在として扱います",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return model.Session{}, false
	}

	// 部分的なセッションは不在と同じ扱い
	if !sess.Complete() {
		return model.Session{}, false
	}

	return sess, true
}

// Save は完全に埋まったセッションをスロットへアトミックに書き込む。
// 一時ファイルに書いてからリネームするため、途中で失敗しても
// 既存のスロットが壊れることはない。
func (s *FileStore) Save(sess model.Session) error {
	if !sess.Complete() {
		return fmt.Errorf("部分的なセッションは保存できません: %+v", sess)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("セッションのシリアライズに失敗しました: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".messdash-session-*")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗しました: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("セッションの書き込みに失敗しました: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("一時ファイルのクローズに失敗しました: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("セッションファイルの置き換えに失敗しました: %w", err)
	}

	return nil
}
