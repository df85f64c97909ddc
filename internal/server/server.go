// Package server exposes the extraction pipeline over HTTP for batch
// uploads, record browsing and CSV export.
package server

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"pdf-abstract/internal/extract"
	"pdf-abstract/internal/keywords"
	"pdf-abstract/internal/logger"
	"pdf-abstract/internal/pdf"
	"pdf-abstract/internal/store"
	"pdf-abstract/internal/types"
)

const maxUploadBytes = 200 << 20 // whole multipart batch

// Service wires the extractor, the record library and the optional
// keyword annotator behind the HTTP API.
type Service struct {
	extractor *extract.Extractor
	store     *store.Store
	annotator *keywords.Annotator // nil when keyword annotation is disabled
	pageSize  int
}

// New creates the HTTP service. annotator may be nil.
func New(ex *extract.Extractor, st *store.Store, annotator *keywords.Annotator, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Service{extractor: ex, store: st, annotator: annotator, pageSize: pageSize}
}

// Router builds the chi router with all endpoints registered.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/process_batch", s.handleProcessBatch)
	r.Post("/api/export", s.handleExport)
	r.Get("/api/records", s.handleRecords)
	r.Get("/api/health", s.handleHealth)
	return r
}

// batchItem is one per-file result in the process_batch response.
type batchItem struct {
	Filename string                  `json:"filename"`
	OK       bool                    `json:"ok"`
	Error    string                  `json:"error,omitempty"`
	Record   *types.ExtractionRecord `json:"record,omitempty"`
}

// handleProcessBatch accepts multipart PDF uploads under the "files"
// field, runs extraction on each and stores the results.
// 单个文件失败不会中断整批，错误记入该文件的结果项。
func (s *Service) handleProcessBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart request", http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "no files uploaded", http.StatusBadRequest)
		return
	}

	tmpDir, err := os.MkdirTemp("", "pdf-abstract-batch-*")
	if err != nil {
		logger.Error("failed to create batch temp directory", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	items := make([]batchItem, 0, len(files))
	for _, fh := range files {
		item := batchItem{Filename: fh.Filename}

		path, err := saveUpload(tmpDir, fh.Filename, fh)
		if err != nil {
			item.Error = err.Error()
			items = append(items, item)
			continue
		}

		rec, err := s.processOne(r, path)
		if err != nil {
			logger.Warn("batch item failed", logger.String("file", fh.Filename), logger.Err(err))
			item.Error = err.Error()
		} else {
			item.OK = true
			item.Record = rec
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(items),
		"results": items,
	})
}

// processOne runs the full pipeline for one saved upload.
func (s *Service) processOne(r *http.Request, path string) (*types.ExtractionRecord, error) {
	doc, err := pdf.LoadDocument(path)
	if err != nil {
		return nil, err
	}

	rec := s.extractor.Extract(doc, nil)

	if s.annotator != nil && rec.Keywords == "" {
		if kw, err := s.annotator.Generate(r.Context(), rec); err == nil {
			rec.Keywords = kw
		}
		// annotation failures degrade to an empty keyword field
	}

	if _, err := s.store.Insert(r.Context(), doc.FilenameStem, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// handleExport streams the whole library as a UTF-8 BOM CSV download.
func (s *Service) handleExport(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.All(r.Context())
	if err != nil {
		logger.Error("export query failed", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="papers-`+
		time.Now().Format("20060102-150405")+`.csv"`)

	enc := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(enc)
	_ = cw.Write([]string{"題目", "年分", "作者", "摘要", "關鍵字"})
	for _, rec := range records {
		_ = cw.Write([]string{rec.Record.Title, rec.Record.Year, rec.Record.Author,
			rec.Record.Abstract, rec.Record.Keywords})
	}
	cw.Flush()
	_ = enc.Close()
}

// handleRecords returns one page of the library, newest first.
func (s *Service) handleRecords(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	records, err := s.store.List(r.Context(), page, s.pageSize)
	if err != nil {
		logger.Error("record listing failed", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	total, err := s.store.Count(r.Context())
	if err != nil {
		logger.Error("record count failed", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []store.StoredRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page":      page,
		"page_size": s.pageSize,
		"total":     total,
		"records":   records,
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// saveUpload writes one multipart file into dir under its base name.
func saveUpload(dir, name string, fh *multipart.FileHeader) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "" || base == "." || !strings.EqualFold(filepath.Ext(base), ".pdf") {
		return "", errors.New("only .pdf uploads are accepted")
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, base)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
