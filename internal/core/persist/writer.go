package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"promptcrawler/internal/core/extract"
	"promptcrawler/internal/core/source"
	"promptcrawler/internal/logger"
	"promptcrawler/internal/store"
)

// Sink is the part of the store the writer needs.
type Sink interface {
	InsertSource(ctx context.Context, src *store.PromptSource) error
	InsertPrompt(ctx context.Context, p *store.ExtractedPrompt) error
}

// Saved reports what one Save call wrote. SourceID is the prompt_sources
// primary key.
type Saved struct {
	SourceID    string
	PromptCount int
}

type Writer struct {
	sink Sink
	log  *logger.Logger
}

func NewWriter(sink Sink) *Writer {
	return &Writer{sink: sink, log: logger.New("PersistenceWriter")}
}

// Save writes the source row and then one row per extracted prompt. A failed
// source write is returned and no prompt is written. A failed prompt write
// is logged and does not affect its siblings. res may be nil.
func (w *Writer) Save(ctx context.Context, item source.Item, res *extract.Result) (Saved, error) {
	src := &store.PromptSource{
		SourceType: string(item.Type()),
		SourceID:   item.SourceID(),
		SourceURL:  item.URL(),
		Title:      item.Title(),
		Content:    item.Content(),
		Author:     item.Author(),
		Score:      item.Score(),
		RawData:    item.Raw(),
	}
	if err := w.sink.InsertSource(ctx, src); err != nil {
		return Saved{}, fmt.Errorf("insert prompt source %s/%s: %w", src.SourceType, src.SourceID, err)
	}

	saved := Saved{SourceID: src.ID}
	if res == nil || len(res.Prompts) == 0 {
		return saved, nil
	}

	analysis, err := json.Marshal(res.Analysis)
	if err != nil {
		analysis = json.RawMessage("{}")
	}
	for _, p := range res.Prompts {
		row := &store.ExtractedPrompt{
			SourceID:          src.ID,
			Title:             p.Title,
			Content:           p.Content,
			SuggestedCategory: p.Category,
			QualityScore:      p.Quality,
			AIAnalysis:        analysis,
			Language:          res.Analysis.Language,
		}
		if err := w.sink.InsertPrompt(ctx, row); err != nil {
			w.log.Warn().Err(err).Str("source_id", src.ID).Str("title", p.Title).Msg("failed to store extracted prompt")
			continue
		}
		saved.PromptCount++
	}
	return saved, nil
}
