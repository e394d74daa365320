package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"

	"storeOptimizer/business/optimization"
	"storeOptimizer/domain"
	"storeOptimizer/pkg/logger"
)

const (
	defaultModel         = "gpt-4o-mini"
	defaultTimeout       = 8 * time.Second
	defaultMaxCandidates = 50
	breakerName          = "narrative-refiner"
)

const systemPrompt = `You rewrite retail layout recommendations for store managers.
You receive a JSON array of changes, each with an id, a tag and a draft rationale.
Reply with one JSON object that maps every id to a rewritten rationale of at most two sentences.
Keep every number from the draft unchanged. Do not invent figures.`

type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxCandidates int
	// consecutive failures that open the breaker
	MaxFailures uint32
	// how long the breaker stays open
	OpenTimeout time.Duration
}

// ChatClient is the part of the OpenAI client the refiner uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIRefiner struct {
	client ChatClient
	cfg    Config
	cb     *gobreaker.CircuitBreaker[map[string]string]
}

var _ optimization.Refiner = (*OpenAIRefiner)(nil)

func NewOpenAIRefiner(cfg Config) *OpenAIRefiner {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return NewRefinerWithClient(openai.NewClientWithConfig(clientCfg), cfg)
}

func NewRefinerWithClient(client ChatClient, cfg Config) *OpenAIRefiner {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = defaultMaxCandidates
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}

	maxFailures := cfg.MaxFailures
	cb := gobreaker.NewCircuitBreaker[map[string]string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &OpenAIRefiner{client: client, cfg: cfg, cb: cb}
}

type draft struct {
	ID              string  `json:"id"`
	Tag             string  `json:"tag"`
	Rationale       string  `json:"rationale"`
	RevenueDeltaPct float64 `json:"revenue_delta_pct"`
	Confidence      float64 `json:"confidence"`
}

// Refine asks the model for rewritten rationales. Only ids that were sent come back;
// callers keep their own text for anything missing.
func (r *OpenAIRefiner) Refine(ctx context.Context, storeID uint64, cands []domain.OptimizationCandidate) (map[string]string, domain.Outcome) {
	if len(cands) == 0 {
		return map[string]string{}, domain.Ok()
	}
	if len(cands) > r.cfg.MaxCandidates {
		cands = cands[:r.cfg.MaxCandidates]
	}

	texts, err := r.cb.Execute(func() (map[string]string, error) {
		return r.complete(ctx, cands)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, domain.Degraded("narrative refiner circuit open")
		}
		logger.Error("narrative refinement failed", "store_id", storeID, "error", err)
		return nil, domain.Failed(err.Error())
	}
	return texts, domain.Ok()
}

func (r *OpenAIRefiner) complete(ctx context.Context, cands []domain.OptimizationCandidate) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	drafts := make([]draft, 0, len(cands))
	known := make(map[string]bool, len(cands))
	for _, c := range cands {
		drafts = append(drafts, draft{
			ID:              c.ID,
			Tag:             c.RationaleTag,
			Rationale:       c.Rationale,
			RevenueDeltaPct: c.Prediction.RevenueDeltaPct,
			Confidence:      c.Prediction.Confidence,
		})
		known[c.ID] = true
	}
	payload, err := json.Marshal(drafts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal drafts: %w", err)
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	var raw map[string]string
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse refined rationales: %w", err)
	}

	out := make(map[string]string, len(raw))
	for id, text := range raw {
		if known[id] && strings.TrimSpace(text) != "" {
			out[id] = strings.TrimSpace(text)
		}
	}
	return out, nil
}
