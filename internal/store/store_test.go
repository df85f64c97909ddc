package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"pdf-abstract/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenAppliesPragmas(t *testing.T) {
	s := openTestStore(t)

	var mode string
	if err := s.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := s.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatal(err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestInsertAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	recs := []types.ExtractionRecord{
		{Title: "題目一", Year: "2021", Author: "王小明", Abstract: "摘要一。"},
		{Title: "題目二", Year: "2022", Author: "吳昺儒", Abstract: "摘要二。", Keywords: "測試、驗證"},
	}
	for i, rec := range recs {
		id, err := s.Insert(ctx, "stem", rec)
		if err != nil {
			t.Fatalf("Insert(%d) error = %v", i, err)
		}
		if id <= 0 {
			t.Errorf("Insert(%d) id = %d", i, id)
		}
	}

	got, err := s.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(got))
	}
	// 最新的排前面
	if got[0].Record.Title != "題目二" {
		t.Errorf("List()[0].Title = %q, want 題目二", got[0].Record.Title)
	}
	if got[0].Record.Keywords != "測試、驗證" {
		t.Errorf("keywords not round-tripped: %q", got[0].Record.Keywords)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not recorded")
	}
}

func TestListPagination(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.Insert(ctx, "stem", types.ExtractionRecord{Title: "題目"}); err != nil {
			t.Fatal(err)
		}
	}

	page1, err := s.List(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	page3, err := s.List(ctx, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page1) != 2 {
		t.Errorf("page 1 has %d records, want 2", len(page1))
	}
	if len(page3) != 1 {
		t.Errorf("page 3 has %d records, want 1", len(page3))
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("Count() = %d, want 5", n)
	}
}

func TestAllInsertionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"第一", "第二", "第三"} {
		if _, err := s.Insert(ctx, "stem", types.ExtractionRecord{Title: title}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("All() returned %d records, want 3", len(all))
	}
	if all[0].Record.Title != "第一" || all[2].Record.Title != "第三" {
		t.Errorf("All() not in insertion order: %q, %q", all[0].Record.Title, all[2].Record.Title)
	}
}
