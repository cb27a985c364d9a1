package forecast

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"chart-oracle/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const systemPrompt = "You are a financial analyst providing forecasts based on trends and probabilities."

const userPromptTemplate = "Based on the current %s trend with a probability of %.2f%%, provide a forecast for the next 5 minutes in this format:\n" +
	"1. Probability of a slight rise: [value]\n" +
	"2. Probability of stability: [value]\n" +
	"3. Probability of a slight decline: [value]\n" +
	"Also indicate the possible changes:\n" +
	"- If a rise occurs, the value may increase by [value]%%.\n" +
	"- If stability holds, the value stays at the current level.\n" +
	"- If a decline occurs, the value may decrease by [value]%%.\n" +
	"Please format the answer clearly."

// LLMClient is the single-turn completion seam to the external model service.
type LLMClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Composer turns a heuristic (trend, confidence) pair into a structured
// natural-language forecast. Completions for a given pair are cached briefly
// because the detail button stays pressable after the first use.
type Composer struct {
	tracer   trace.Tracer
	llm      LLMClient
	cache    *redis.Client
	timeout  time.Duration
	cacheTTL time.Duration
}

func NewComposer(tracer trace.Tracer, llm LLMClient, cache *redis.Client, timeout, cacheTTL time.Duration) *Composer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Composer{
		tracer:   tracer,
		llm:      llm,
		cache:    cache,
		timeout:  timeout,
		cacheTTL: cacheTTL,
	}
}

func (c *Composer) Compose(ctx context.Context, trend domain.Trend, confidence float64) (string, error) {
	ctx, span := c.tracer.Start(ctx, "forecast.compose")
	defer span.End()

	if c.llm == nil {
		return "", fmt.Errorf("forecast composer is not configured")
	}
	if !trend.IsValid() {
		return "", fmt.Errorf("invalid trend: %q", trend)
	}

	key := fmt.Sprintf("forecast:%s:%.2f", trend, confidence)
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, key).Result()
		if err == nil && cached != "" {
			return cached, nil
		}
		if err != nil && err != redis.Nil {
			log.Printf("forecast cache read error for %s: %v", key, err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(userPromptTemplate, trend.Describe(), confidence)
	text, err := c.llm.Complete(callCtx, systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("completion returned empty text")
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, text, c.cacheTTL).Err(); err != nil {
			log.Printf("forecast cache write error for %s: %v", key, err)
		}
	}
	return text, nil
}
