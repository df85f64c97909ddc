// Package types defines core data types and enums for the PDF abstract extractor.
package types

// Document 单个 PDF 的抽取证据：逐页文本 + 文件名 + metadata
// Pages are 1-indexed through the Page helper; a Document is built once
// per extraction pass and discarded afterwards.
type Document struct {
	Pages          []string `json:"pages"`           // per-page plain text, index 0 = page 1
	FilenameStem   string   `json:"filename_stem"`   // file name without extension
	MetadataAuthor string   `json:"metadata_author"` // PDF metadata author, may be empty
	MetadataDate   string   `json:"metadata_date"`   // PDF metadata creation date, may be empty
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Page returns the text of the 1-indexed page n, or "" when out of range.
func (d *Document) Page(n int) string {
	if n < 1 || n > len(d.Pages) {
		return ""
	}
	return d.Pages[n-1]
}

// AbstractSpan 摘要区段的起讫位置（页码 1 起算，行偏移为该页内行号）
// EndPattern is empty when the span was truncated at the page cap.
type AbstractSpan struct {
	StartPage    int    `json:"start_page"`
	StartLine    int    `json:"start_line"`
	EndPage      int    `json:"end_page"`
	EndLine      int    `json:"end_line"`
	StartPattern string `json:"start_pattern"`
	EndPattern   string `json:"end_pattern,omitempty"`
}

// Truncated reports whether the span ended at the page cap instead of
// a recognized stop pattern.
func (s *AbstractSpan) Truncated() bool {
	return s.EndPattern == ""
}

// TitleSource 题目来源标签
type TitleSource string

const (
	TitleFromFilename     TitleSource = "filename"
	TitleFromSuperstring  TitleSource = "superstring-expansion"
	TitleFromContinuation TitleSource = "continuation-expansion"
)

// TitleCandidate 候选题目及其来源
type TitleCandidate struct {
	Value  string      `json:"value"`
	Source TitleSource `json:"source"`
}

// AuthorSource 作者来源标签（按解析策略命名）
type AuthorSource string

const (
	AuthorLabel3P     AuthorSource = "label-3p"
	AuthorLabel8P     AuthorSource = "label-8p"
	AuthorGuess3P     AuthorSource = "guess-3p"
	AuthorGuess8P     AuthorSource = "guess-8p"
	AuthorCJKOverride AuthorSource = "cjk-override"
	AuthorMetadata    AuthorSource = "metadata"
)

// AuthorCandidate 候选作者及其来源
type AuthorCandidate struct {
	Value  string       `json:"value"`
	Source AuthorSource `json:"source"`
}

// ExtractionRecord 最终输出单元：题目/年分/作者/摘要
// Absent fields are empty strings, never an error.
type ExtractionRecord struct {
	Title    string `json:"title"`
	Year     string `json:"year"`
	Author   string `json:"author"`
	Abstract string `json:"abstract"`
	Keywords string `json:"keywords,omitempty"` // optional LLM annotation
}

// ErrorCode 错误代码枚举
type ErrorCode string

const (
	ErrPDFNotFound  ErrorCode = "PDF_NOT_FOUND"
	ErrPDFInvalid   ErrorCode = "PDF_INVALID"
	ErrNoText       ErrorCode = "NO_TEXT"
	ErrOutput       ErrorCode = "OUTPUT_ERROR"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrRules        ErrorCode = "RULES_ERROR"
	ErrAPICall      ErrorCode = "API_CALL_ERROR"
	ErrStore        ErrorCode = "STORE_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Config 应用配置
// OpenAI 字段仅在启用关键词标注时需要。
type Config struct {
	OpenAIAPIKey    string `json:"openai_api_key"`
	OpenAIBaseURL   string `json:"openai_base_url"`
	OpenAIModel     string `json:"openai_model"`
	OutputDirectory string `json:"output_directory"`
	RulesPath       string `json:"rules_path"`
	DatabasePath    string `json:"database_path"`
	LibraryPageSize int    `json:"library_page_size"`
}
