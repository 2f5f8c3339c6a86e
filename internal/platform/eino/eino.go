package eino

import (
	"context"
	"fmt"
	"strings"

	gemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"promptcrawler/internal/logger"
)

// Config represents the configuration for Eino LLM integration
type Config struct {
	Provider string `json:"provider"` // only "gemini" is wired
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
}

// NewChatModel builds the chat model used by the extraction stage. Without
// an API key it returns a nil model and no error: extraction is then
// skipped for every item.
func NewChatModel(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	log := logger.New("Eino")
	if cfg.APIKey == "" {
		log.LogWarn("no LLM API key configured, prompt extraction disabled")
		return nil, nil
	}

	switch strings.ToLower(cfg.Provider) {
	case "gemini", "":
		m, err := newGeminiModel(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.LogInfof("using gemini model %s", cfg.Model)
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s. Supported: %s", cfg.Provider, strings.Join(GetAvailableProviders(), ", "))
	}
}

func newGeminiModel(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	m, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini chat model: %w", err)
	}
	return m, nil
}

// GetAvailableProviders returns list of supported LLM providers
func GetAvailableProviders() []string {
	return []string{"gemini"}
}
