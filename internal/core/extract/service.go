package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"

	"promptcrawler/internal/core/source"
	"promptcrawler/internal/logger"
	"promptcrawler/internal/utils/markdown"
	"promptcrawler/prompts"
)

// maxInputChars bounds the item text sent to the model.
const maxInputChars = 6000

// Prompt is one candidate that met the quality threshold.
type Prompt struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category string  `json:"category"`
	Quality  float64 `json:"quality"`
}

// Analysis is the model's free-form verdict on the whole item. It is stored
// as ai_analysis on every prompt extracted from the item.
type Analysis struct {
	Summary   string `json:"summary"`
	Relevance any    `json:"relevance,omitempty"`
	Language  string `json:"language"`
}

// Result is what survived thresholding. Candidates counts every usable
// candidate the model returned, kept or not.
type Result struct {
	Prompts    []Prompt `json:"prompts"`
	Analysis   Analysis `json:"analysis"`
	Candidates int      `json:"candidates"`
}

type Service struct {
	model    model.BaseChatModel
	template prompt.ChatTemplate
	log      *logger.Logger
}

// NewService accepts a nil model; extraction is then skipped for every item.
func NewService(m model.BaseChatModel) *Service {
	return &Service{
		model:    m,
		template: prompts.Extraction(),
		log:      logger.New("ExtractionService"),
	}
}

func (s *Service) Enabled() bool { return s != nil && s.model != nil }

// Extract returns nil when the model is missing, the call fails or the output
// cannot be parsed. None of these fail the job.
func (s *Service) Extract(ctx context.Context, item source.Item, threshold float64) *Result {
	if !s.Enabled() {
		return nil
	}

	messages, err := s.template.Format(ctx, map[string]any{
		"output_shape": prompts.ExtractionOutputShape,
		"content":      markdown.Truncate(item.Text(), maxInputChars, "\n...[truncated]"),
	})
	if err != nil {
		s.log.LogError("format extraction template", err)
		return nil
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		s.log.Warn().Err(err).Str("source_type", string(item.Type())).Str("source_id", item.SourceID()).Msg("LLM call failed")
		return nil
	}
	if resp == nil {
		return nil
	}

	res, err := parse(resp.Content, threshold)
	if err != nil {
		s.log.Warn().Err(err).Str("source_id", item.SourceID()).Msg("unparseable LLM output")
		return nil
	}
	s.log.Debug().Str("source_id", item.SourceID()).Int("candidates", res.Candidates).Int("kept", len(res.Prompts)).Msg("extraction finished")
	return res
}

type rawOutput struct {
	Prompts []struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category string `json:"category"`
		Quality  score  `json:"quality"`
	} `json:"prompts"`
	Analysis Analysis `json:"analysis"`
}

// score accepts a JSON number or a numeric string.
type score float64

func (s *score) UnmarshalJSON(b []byte) error {
	str := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if str == "" || str == "null" {
		*s = 0
		return nil
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return fmt.Errorf("quality %s: %w", b, err)
	}
	*s = score(f)
	return nil
}

func parse(content string, threshold float64) (*Result, error) {
	content = stripFences(content)

	var out rawOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	res := &Result{Analysis: out.Analysis, Prompts: []Prompt{}}
	for _, p := range out.Prompts {
		text := strings.TrimSpace(p.Content)
		if text == "" {
			continue
		}
		res.Candidates++
		q := float64(p.Quality)
		if math.IsNaN(q) || math.IsInf(q, 0) {
			continue
		}
		q = clamp(q)
		if !(q >= threshold) {
			continue
		}
		res.Prompts = append(res.Prompts, Prompt{
			Title:    strings.TrimSpace(p.Title),
			Content:  text,
			Category: strings.TrimSpace(p.Category),
			Quality:  q,
		})
	}
	return res, nil
}

// stripFences removes a surrounding markdown code fence and any prose
// outside the outermost JSON object.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```JSON")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

func clamp(q float64) float64 {
	switch {
	case q < 0:
		return 0
	case q > 10:
		return 10
	}
	return q
}
