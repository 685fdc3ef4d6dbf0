package oracle

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/failsafe-go/failsafe-go/timeout"
	"google.golang.org/genai"

	"github.com/yousefh409/llm-censorship/pkg/types"
)

// GeminiConfig holds configuration for the Gemini oracle.
type GeminiConfig struct {
	APIKey      string // If empty, uses GOOGLE_API_KEY env var
	Model       string // e.g., "gemini-3-pro"
	Policy      types.PolicyVersion
	Temperature float32       // Low temperature for deterministic policy execution
	CallTimeout time.Duration // Per-attempt timeout
	MaxRetries  int           // Transport retries before degrading to an error payload
}

// DefaultGeminiConfig returns default configuration for one policy version.
func DefaultGeminiConfig(policy types.PolicyVersion) GeminiConfig {
	return GeminiConfig{
		Policy:      policy,
		Temperature: 0.2,
		CallTimeout: 60 * time.Second,
		MaxRetries:  2,
	}
}

// GeminiOracle implements Oracle using Google GenAI Gemini.
type GeminiOracle struct {
	client   *genai.Client
	model    string
	policy   types.PolicyVersion
	genCfg   *genai.GenerateContentConfig
	executor failsafe.Executor[string]
}

// NewGeminiOracle creates a new Gemini-backed oracle.
func NewGeminiOracle(ctx context.Context, cfg GeminiConfig) (*GeminiOracle, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = os.Getenv("GOOGLE_MODEL")
	}
	if model == "" {
		model = "gemini-3-pro"
	}

	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	retry := retrypolicy.NewBuilder[string]().
		WithBackoff(time.Second, 10*time.Second).
		WithMaxRetries(cfg.MaxRetries).
		Build()
	attempt := timeout.New[string](cfg.CallTimeout)

	return &GeminiOracle{
		client: client,
		model:  model,
		policy: cfg.Policy,
		genCfg: &genai.GenerateContentConfig{
			Temperature:      genai.Ptr(cfg.Temperature),
			ResponseMIMEType: "application/json",
		},
		executor: failsafe.With(retry, attempt),
	}, nil
}

// Classify implements Oracle. Transport and oracle failures are returned as an
// error payload, not raised; the run keeps one result per post regardless.
func (o *GeminiOracle) Classify(ctx context.Context, text string) RawResponse {
	prompt := BuildPrompt(o.policy, text)

	result, err := o.executor.WithContext(ctx).Get(func() (string, error) {
		return o.generate(ctx, prompt)
	})
	if err != nil {
		return ErrorPayload(err)
	}
	return RawResponse(result)
}

func (o *GeminiOracle) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Models.GenerateContent(ctx, o.model, genai.Text(prompt), o.genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from gemini")
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			result += part.Text
		}
	}
	return result, nil
}

// Model returns the model name.
func (o *GeminiOracle) Model() string {
	return o.model
}
