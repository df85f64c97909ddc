// Package output writes extraction results to per-document text files and
// an aggregate CSV sheet, both UTF-8 with BOM so they open cleanly in
// Windows 记事本与 Excel。
package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"pdf-abstract/internal/logger"
	"pdf-abstract/internal/types"
)

// CSVFileName is the aggregate sheet written alongside the text files.
const CSVFileName = "論文整理.csv"

var csvHeader = []string{"題目", "年分", "作者", "摘要"}

// Writer persists extraction records under a single output directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create output directory", err, logger.String("dir", dir))
		return nil, types.NewAppError(types.ErrOutput, "failed to create output directory", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteRecord writes one record as <stem>.txt with labelled fields.
// 缺失字段保留标签、值留空，字段间以空行分隔。
func (w *Writer) WriteRecord(stem string, rec types.ExtractionRecord) (string, error) {
	path := filepath.Join(w.dir, sanitizeFileName(stem)+".txt")

	var b strings.Builder
	b.WriteString("題目：" + rec.Title + "\n\n")
	b.WriteString("年分：" + rec.Year + "\n\n")
	b.WriteString("作者：" + rec.Author + "\n\n")
	b.WriteString("摘要：" + rec.Abstract + "\n")
	if rec.Keywords != "" {
		b.WriteString("\n關鍵字：" + rec.Keywords + "\n")
	}

	if err := writeBOMFile(path, b.String()); err != nil {
		return "", err
	}
	logger.Debug("record written", logger.String("path", path))
	return path, nil
}

// WriteCSV writes the aggregate sheet for a whole batch.
// A locked or otherwise unwritable sheet is reported as an error so the
// caller can warn and continue; the per-document text files are unaffected.
func (w *Writer) WriteCSV(records []types.ExtractionRecord) (string, error) {
	path := filepath.Join(w.dir, CSVFileName)

	f, err := os.Create(path)
	if err != nil {
		logger.Warn("cannot write aggregate sheet, is it open in Excel?",
			logger.String("path", path), logger.Err(err))
		return "", types.NewAppError(types.ErrOutput, "failed to create aggregate sheet", err)
	}
	defer f.Close()

	enc := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(enc)

	if err := cw.Write(csvHeader); err != nil {
		return "", types.NewAppError(types.ErrOutput, "failed to write sheet header", err)
	}
	for _, rec := range records {
		row := []string{rec.Title, rec.Year, rec.Author, rec.Abstract}
		if err := cw.Write(row); err != nil {
			return "", types.NewAppError(types.ErrOutput, "failed to write sheet row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", types.NewAppError(types.ErrOutput, "failed to flush aggregate sheet", err)
	}
	if err := enc.Close(); err != nil {
		return "", types.NewAppError(types.ErrOutput, "failed to finish aggregate sheet", err)
	}

	logger.Info("aggregate sheet written", logger.String("path", path), logger.Int("rows", len(records)))
	return path, nil
}

// writeBOMFile writes content as UTF-8 with a leading BOM.
func writeBOMFile(path, content string) error {
	f, err := os.Create(path)
	if err != nil {
		logger.Error("failed to create output file", err, logger.String("path", path))
		return types.NewAppError(types.ErrOutput, "failed to create output file", err)
	}
	defer f.Close()

	enc := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	if _, err := enc.Write([]byte(content)); err != nil {
		return types.NewAppError(types.ErrOutput, "failed to write output file", err)
	}
	if err := enc.Close(); err != nil {
		return types.NewAppError(types.ErrOutput, "failed to finish output file", err)
	}
	return nil
}

// sanitizeFileName replaces characters Windows refuses in file names.
func sanitizeFileName(name string) string {
	r := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	s := strings.TrimSpace(r.Replace(name))
	if s == "" {
		s = "untitled"
	}
	return s
}
