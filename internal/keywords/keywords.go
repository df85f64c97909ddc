// Package keywords annotates extraction records with LLM-generated
// keyword lists when no 關鍵字 section exists in the source document.
package keywords

import (
	"context"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"pdf-abstract/internal/logger"
	"pdf-abstract/internal/types"
)

const systemPrompt = "你是学术论文整理助手。根据给出的论文题目与摘要，" +
	"提炼 3 到 6 个最能代表该论文主题的关键词。" +
	"仅输出关键词本身，以顿号（、）分隔，不要编号，不要任何说明文字。"

// Annotator generates keywords for a record via an OpenAI-compatible API.
type Annotator struct {
	model *openai.ChatModel
}

// NewAnnotator creates the chat model client.
// baseURL may point at any OpenAI-compatible endpoint.
func NewAnnotator(ctx context.Context, apiKey, baseURL, model string) (*Annotator, error) {
	if apiKey == "" {
		return nil, types.NewAppError(types.ErrAPICall, "OpenAI API key not configured", nil)
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:   model,
		APIKey:  apiKey,
		BaseURL: baseURL,
	})
	if err != nil {
		logger.Error("failed to create chat model", err, logger.String("model", model))
		return nil, types.NewAppError(types.ErrAPICall, "failed to create chat model", err)
	}
	return &Annotator{model: chatModel}, nil
}

// Generate 为单条记录产生关键词串（顿号分隔）
// Callers treat errors as non-fatal: the record ships without keywords.
func (a *Annotator) Generate(ctx context.Context, rec types.ExtractionRecord) (string, error) {
	if rec.Abstract == "" && rec.Title == "" {
		return "", nil
	}

	var b strings.Builder
	if rec.Title != "" {
		b.WriteString("题目：" + rec.Title + "\n")
	}
	if rec.Abstract != "" {
		b.WriteString("摘要：" + rec.Abstract)
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(b.String()),
	}

	resp, err := a.model.Generate(ctx, messages)
	if err != nil {
		logger.Warn("keyword generation failed", logger.String("title", rec.Title), logger.Err(err))
		return "", types.NewAppError(types.ErrAPICall, "keyword generation failed", err)
	}

	kw := cleanKeywords(resp.Content)
	logger.Debug("keywords generated", logger.String("title", rec.Title), logger.String("keywords", kw))
	return kw, nil
}

// cleanKeywords strips wrapping and normalizes separators to 顿号.
func cleanKeywords(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	// 模型偶尔用逗号或分号分隔
	for _, sep := range []string{"，", ",", "；", ";", "\n"} {
		s = strings.ReplaceAll(s, sep, "、")
	}
	parts := strings.Split(s, "、")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "、")
}
