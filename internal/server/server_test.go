package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"pdf-abstract/internal/extract"
	"pdf-abstract/internal/store"
	"pdf-abstract/internal/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return New(extract.New(nil), st, nil, 10)
}

func TestHealth(t *testing.T) {
	svc := newTestService(t)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestRecordsEmpty(t *testing.T) {
	svc := newTestService(t)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Page    int                  `json:"page"`
		Total   int                  `json:"total"`
		Records []store.StoredRecord `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 0 || len(body.Records) != 0 {
		t.Errorf("expected empty library, got total=%d records=%d", body.Total, len(body.Records))
	}
}

func TestRecordsPaged(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.store.Insert(ctx, "stem", types.ExtractionRecord{Title: "題目"}); err != nil {
			t.Fatal(err)
		}
	}

	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records?page=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Total   int                  `json:"total"`
		Records []store.StoredRecord `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 3 || len(body.Records) != 3 {
		t.Errorf("total=%d records=%d, want 3/3", body.Total, len(body.Records))
	}
}

func TestExportCSV(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.store.Insert(context.Background(), "stem",
		types.ExtractionRecord{Title: "題目", Year: "2022", Author: "吳昺儒", Abstract: "摘要。"}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}

	data := rec.Body.Bytes()
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("export must start with a UTF-8 BOM")
	}
	body := string(data)
	if !strings.Contains(body, "題目,年分,作者,摘要,關鍵字") {
		t.Errorf("header missing in export:\n%s", body)
	}
	if !strings.Contains(body, "吳昺儒") {
		t.Error("record row missing in export")
	}
}

func TestProcessBatchRejectsEmptyRequest(t *testing.T) {
	svc := newTestService(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/process_batch", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	svc.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
