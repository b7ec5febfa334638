package session

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hitoshi/messdash/internal/model"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return NewFileStore(filepath.Join(t.TempDir(), "session.json"), logger)
}

func TestFileStore_Load_MissingFile_ReturnsAbsent(t *testing.T) {
	store := newTestStore(t)

	_, ok := store.Load()
	if ok {
		t.Error("ファイルが存在しない場合は不在を返すべき")
	}
}

func TestFileStore_SaveAndLoad_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	saved := model.Session{UserName: "Arjun", WhatsappID: "919900112233"}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save がエラーを返した: %v", err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("保存済みセッションが不在として扱われた")
	}
	if loaded != saved {
		t.Errorf("Load = %+v, want %+v", loaded, saved)
	}
}

func TestFileStore_Load_CorruptFile_ReturnsAbsent(t *testing.T) {
	store := newTestStore(t)

	if err := os.WriteFile(store.path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, ok := store.Load()
	if ok {
		t.Error("壊れたファイルは不在として扱うべき")
	}
}

func TestFileStore_Load_PartialSession_ReturnsAbsent(t *testing.T) {
	store := newTestStore(t)

	// whatsapp_idを欠いた部分的なセッション
	data, _ := json.Marshal(map[string]string{"userName": "Arjun"})
	if err := os.WriteFile(store.path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	_, ok := store.Load()
	if ok {
		t.Error("部分的なセッションは不在として扱うべき")
	}
}

func TestFileStore_Save_RejectsPartialSession(t *testing.T) {
	store := newTestStore(t)

	cases := []model.Session{
		{},
		{UserName: "Arjun"},
		{WhatsappID: "919900112233"},
	}
	for _, sess := range cases {
		if err := store.Save(sess); err == nil {
			t.Errorf("部分的なセッション %+v の保存が拒否されなかった", sess)
		}
	}
}

func TestFileStore_Save_OverwritesExistingSlot(t *testing.T) {
	store := newTestStore(t)

	first := model.Session{UserName: "Arjun", WhatsappID: "919900112233"}
	second := model.Session{UserName: "Priya", WhatsappID: "919900445566"}

	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(second); err != nil {
		t.Fatal(err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("上書き後のセッションが不在として扱われた")
	}
	if loaded != second {
		t.Errorf("Load = %+v, want %+v（明示的な上書きが最後の値になる）", loaded, second)
	}
}

func TestFileStore_Save_FailedSaveKeepsOldSlot(t *testing.T) {
	store := newTestStore(t)

	first := model.Session{UserName: "Arjun", WhatsappID: "919900112233"}
	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}

	// 不正なセッションの保存は拒否され、既存スロットは変わらない
	if err := store.Save(model.Session{UserName: "Priya"}); err == nil {
		t.Fatal("部分的なセッションが保存された")
	}

	loaded, ok := store.Load()
	if !ok || loaded != first {
		t.Errorf("Load = (%+v, %v), want (%+v, true)", loaded, ok, first)
	}
}

func TestResolve_Precedence(t *testing.T) {
	explicit := model.Session{UserName: "Explicit", WhatsappID: "1"}
	carried := model.Session{UserName: "Carried", WhatsappID: "2"}
	stored := model.Session{UserName: "Stored", WhatsappID: "3"}
	partial := model.Session{UserName: "Partial"}

	cases := []struct {
		name       string
		candidates []model.Session
		want       model.Session
		wantOK     bool
	}{
		{"明示的な選択が最優先", []model.Session{explicit, carried, stored}, explicit, true},
		{"引き継ぎ値は保存済みより優先", []model.Session{{}, carried, stored}, carried, true},
		{"リロード時は保存済みにフォールバック", []model.Session{{}, {}, stored}, stored, true},
		{"部分的な候補はスキップされる", []model.Session{partial, stored}, stored, true},
		{"全候補が不完全なら不在", []model.Session{partial, {}}, model.Session{}, false},
		{"候補なしは不在", nil, model.Session{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Resolve(tc.candidates...)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("Resolve = (%+v, %v), want (%+v, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}
