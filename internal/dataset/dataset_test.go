package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/comment-profiler/internal/dataset"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp CSV: %v", err)
	}
	return path
}

func TestLoadStripsBOM(t *testing.T) {
	path := writeTempCSV(t, "\uFEFFuid,content\nu1,hello\n")

	table, err := dataset.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !table.HasColumn("uid") {
		t.Errorf("BOM not stripped from header, columns: %v", table.Columns)
	}
	if table.Len() != 1 {
		t.Errorf("expected 1 row, got %d", table.Len())
	}
	if got := table.Field(table.Rows[0], "content"); got != "hello" {
		t.Errorf("expected content 'hello', got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := dataset.Load("/nonexistent/file.csv")
	if !errors.Is(err, dataset.ErrMissingInput) {
		t.Errorf("expected ErrMissingInput, got %v", err)
	}
}

func TestFieldToleratesShortRows(t *testing.T) {
	table, err := dataset.Read(strings.NewReader("uid,content,extra\nu1,hi\n"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got := table.Field(table.Rows[0], "extra"); got != "" {
		t.Errorf("expected empty field on short row, got %q", got)
	}
	if got := table.Field(table.Rows[0], "unknown"); got != "" {
		t.Errorf("expected empty field on unknown column, got %q", got)
	}
}

func TestColumnLookupIsCaseInsensitive(t *testing.T) {
	table := dataset.New([]string{" UID ", "Content"}, [][]string{{"u1", "hey"}})
	if !table.HasColumn("uid") {
		t.Error("expected uid column to match despite case and padding")
	}
	if got := table.Field(table.Rows[0], "content"); got != "hey" {
		t.Errorf("expected 'hey', got %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	table := dataset.New([]string{"uid", "content"}, [][]string{{"u1", "你好"}, {"u2", "hi"}})
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := table.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := dataset.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Columns, table.Columns) {
		t.Errorf("columns changed: %v vs %v", loaded.Columns, table.Columns)
	}
	if !reflect.DeepEqual(loaded.Rows, table.Rows) {
		t.Errorf("rows changed: %v vs %v", loaded.Rows, table.Rows)
	}
}

func commentsTable() *dataset.Table {
	// u2 is the mode with 3 rows, u1 has 2, u3 has 1
	return dataset.New([]string{"uid", "comment_id"}, [][]string{
		{"u1", "c1"},
		{"u2", "c2"},
		{"u2", "c3"},
		{"u3", "c4"},
		{"u2", "c5"},
		{"u1", "c6"},
	})
}

func TestCountUserFrequency(t *testing.T) {
	freq, err := dataset.CountUserFrequency(commentsTable(), "uid")
	if err != nil {
		t.Fatalf("CountUserFrequency failed: %v", err)
	}

	want := []dataset.UserCount{{UID: "u2", Count: 3}, {UID: "u1", Count: 2}, {UID: "u3", Count: 1}}
	if !reflect.DeepEqual(freq, want) {
		t.Errorf("unexpected frequency index: %v", freq)
	}
}

func TestCountUserFrequencyTiesKeepFirstSeenOrder(t *testing.T) {
	table := dataset.New([]string{"uid"}, [][]string{{"b"}, {"a"}, {"b"}, {"a"}})
	freq, err := dataset.CountUserFrequency(table, "uid")
	if err != nil {
		t.Fatalf("CountUserFrequency failed: %v", err)
	}
	if freq[0].UID != "b" || freq[1].UID != "a" {
		t.Errorf("tie order not first-seen: %v", freq)
	}
}

func TestCountUserFrequencyMissingColumn(t *testing.T) {
	table := dataset.New([]string{"name"}, nil)
	if _, err := dataset.CountUserFrequency(table, "uid"); !errors.Is(err, dataset.ErrMissingInput) {
		t.Errorf("expected ErrMissingInput, got %v", err)
	}
}

func TestSelectUsersTop(t *testing.T) {
	uids, err := dataset.SelectUsers(commentsTable(), 2, dataset.StrategyTop, 42, "uid")
	if err != nil {
		t.Fatalf("SelectUsers failed: %v", err)
	}
	if !reflect.DeepEqual(uids, []string{"u2", "u1"}) {
		t.Errorf("expected [u2 u1], got %v", uids)
	}
}

func TestSelectUsersTopMoreThanDistinct(t *testing.T) {
	uids, err := dataset.SelectUsers(commentsTable(), 10, dataset.StrategyTop, 42, "uid")
	if err != nil {
		t.Fatalf("SelectUsers failed: %v", err)
	}
	if len(uids) != 3 {
		t.Errorf("expected all 3 uids, got %v", uids)
	}
	if uids[0] != "u2" {
		t.Errorf("first uid should be the mode, got %q", uids[0])
	}
}

func TestSelectUsersRandomIsDeterministic(t *testing.T) {
	first, err := dataset.SelectUsers(commentsTable(), 2, dataset.StrategyRandom, 42, "uid")
	if err != nil {
		t.Fatalf("SelectUsers failed: %v", err)
	}
	second, err := dataset.SelectUsers(commentsTable(), 2, dataset.StrategyRandom, 42, "uid")
	if err != nil {
		t.Fatalf("SelectUsers failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different samples: %v vs %v", first, second)
	}
	if len(first) != 2 {
		t.Errorf("expected 2 uids, got %v", first)
	}
}

func TestSelectUsersInvalidStrategy(t *testing.T) {
	_, err := dataset.SelectUsers(commentsTable(), 2, "weighted", 42, "uid")
	if !errors.Is(err, dataset.ErrInvalidStrategy) {
		t.Errorf("expected ErrInvalidStrategy, got %v", err)
	}
}

func TestFilterUsers(t *testing.T) {
	filtered, err := dataset.FilterUsers(commentsTable(), []string{"u1"}, "uid")
	if err != nil {
		t.Fatalf("FilterUsers failed: %v", err)
	}
	if filtered.Len() != 2 {
		t.Errorf("expected 2 rows for u1, got %d", filtered.Len())
	}
	for _, row := range filtered.Rows {
		if got := filtered.Field(row, "uid"); got != "u1" {
			t.Errorf("unexpected uid in filtered rows: %q", got)
		}
	}
}
