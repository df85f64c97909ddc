// Package pdf supplies per-page plain text and document metadata for the
// extraction engine. It reads PDFs with github.com/ledongthuc/pdf and keeps
// the raw line structure of each page, since the downstream heuristics are
// line-oriented.
package pdf

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdf-abstract/internal/logger"
	"pdf-abstract/internal/types"
)

// Info PDF 基本信息（页数、文件大小、是否含可提取文本）
type Info struct {
	FilePath  string `json:"file_path"`
	FileName  string `json:"file_name"`
	PageCount int    `json:"page_count"`
	FileSize  int64  `json:"file_size"`
	IsTextPDF bool   `json:"is_text_pdf"`
}

// GetInfo 获取 PDF 基本信息
func GetInfo(path string) (*Info, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewAppError(types.ErrPDFNotFound, "文件不存在，請檢查路徑", err)
		}
		return nil, types.NewAppError(types.ErrPDFInvalid, "無法存取文件", err)
	}
	if fileInfo.IsDir() {
		return nil, types.NewAppError(types.ErrPDFInvalid, "路徑指向目錄而非文件", nil)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrPDFInvalid, "無法開啟 PDF 文件", err)
	}
	defer f.Close()

	return &Info{
		FilePath:  path,
		FileName:  filepath.Base(path),
		PageCount: r.NumPage(),
		FileSize:  fileInfo.Size(),
		IsTextPDF: hasMeaningfulText(r, 3),
	}, nil
}

// LoadDocument 读取整份 PDF，产出逐页文本与 metadata
// Pages whose text cannot be extracted come back as empty strings; the
// caller decides whether an all-empty document is fatal.
func LoadDocument(path string) (*types.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewAppError(types.ErrPDFNotFound, "文件不存在，請檢查路徑", err)
		}
		return nil, types.NewAppError(types.ErrPDFInvalid, "無法開啟 PDF 文件", err)
	}
	defer f.Close()

	doc := &types.Document{
		FilenameStem: stem(path),
	}

	total := r.NumPage()
	nonEmpty := 0
	for pageNum := 1; pageNum <= total; pageNum++ {
		text := pageText(r, pageNum)
		if strings.TrimSpace(text) != "" {
			nonEmpty++
		}
		doc.Pages = append(doc.Pages, text)
	}

	author, date := readMetadata(r)
	doc.MetadataAuthor = SanitizeMetaValue(author)
	doc.MetadataDate = strings.TrimSpace(date)

	if nonEmpty == 0 {
		// Distinguish image-only scans from genuinely empty files for
		// the diagnostic message.
		if hasImageStreams(path) {
			return nil, types.NewAppError(types.ErrNoText, "PDF 僅含掃描影像，無可提取文本", nil)
		}
		return nil, types.NewAppError(types.ErrNoText, "PDF 中沒有可提取的文本", nil)
	}

	logger.Debug("document loaded",
		logger.String("file", filepath.Base(path)),
		logger.Int("pages", total),
		logger.Int("nonEmptyPages", nonEmpty))
	return doc, nil
}

// pageText extracts one page as newline-separated lines in reading order.
func pageText(r *pdf.Reader, pageNum int) string {
	page := r.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	rows, err := page.GetTextByRow()
	if err != nil || len(rows) == 0 {
		// Row grouping failed; fall back to the flat text stream.
		content, err := page.GetPlainText(nil)
		if err != nil {
			return ""
		}
		return cleanLine(content)
	}

	// PDF 坐标原点在左下角：Y 越大越靠页面上方
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	var sb strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for _, text := range row.Content {
			line.WriteString(text.S)
		}
		s := cleanLine(line.String())
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// readMetadata pulls Author and CreationDate out of the trailer Info dict.
func readMetadata(r *pdf.Reader) (author, creationDate string) {
	defer func() {
		// Malformed trailer dictionaries panic inside the pdf library;
		// metadata is optional, so swallow and carry on.
		if rec := recover(); rec != nil {
			logger.Warn("metadata read failed", logger.Any("panic", rec))
		}
	}()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return "", ""
	}
	if v := info.Key("Author"); v.Kind() == pdf.String {
		author = v.Text()
	}
	if v := info.Key("CreationDate"); v.Kind() == pdf.String {
		creationDate = v.Text()
	}
	return author, creationDate
}

// hasMeaningfulText checks the first maxPages for enough non-whitespace
// characters to treat the PDF as text-based.
func hasMeaningfulText(r *pdf.Reader, maxPages int) bool {
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}
	count := 0
	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, ch := range content {
			if !strings.ContainsRune(" \t\r\n　", ch) {
				count++
			}
		}
		if count > 50 {
			return true
		}
	}
	return count > 0
}

// cleanLine strips control characters the heuristics must tolerate while
// preserving tabs and full-width spacing.
func cleanLine(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < 32 && r != '\t' && r != '\n' {
			continue
		}
		if r >= 0x7F && r <= 0x9F {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " \t")
}

// SanitizeMetaValue drops empty and placeholder metadata values.
func SanitizeMetaValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	switch strings.ToLower(v) {
	case "unknown", "untitled", "title", "author", "null", "none":
		return ""
	}
	return v
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
