package dispute

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"milestone-service/pkg/circuitbreaker"
	"milestone-service/pkg/config"
)

const (
	defaultModel       = "claude-3-5-haiku-latest"
	defaultCallTimeout = 5 * time.Second
	maxGenerateRetries = 3
)

var errAPIKeyRequired = errors.New("API key required")

// AnthropicGenerator calls the Anthropic messages API behind a circuit
// breaker with a bounded per-call timeout so a slow collaborator cannot
// stall enrichment workers.
type AnthropicGenerator struct {
	client  anthropic.Client
	model   anthropic.Model
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
}

func NewAnthropicGenerator(cfg config.AnthropicConfig, logger *zap.Logger) (*AnthropicGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or anthropic.api_key", errAPIKeyRequired)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	timeout := defaultCallTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &AnthropicGenerator{
		client:  anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   anthropic.Model(model),
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Generate runs one shaped generation request.
func (g *AnthropicGenerator) Generate(ctx context.Context, req GenRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:       g.model,
		MaxTokens:   req.MaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	var text string
	err := g.breaker.Execute(func() error {
		operation := func() error {
			message, err := g.client.Messages.New(ctx, params)
			if err != nil {
				if !isRetryable(err) {
					return backoff.Permanent(err)
				}
				return err
			}

			if len(message.Content) == 0 {
				return backoff.Permanent(fmt.Errorf("unexpected response format: no content blocks"))
			}
			content := message.Content[0]
			if content.Type != "text" {
				return backoff.Permanent(fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type))
			}

			text = content.Text
			return nil
		}

		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxGenerateRetries),
			ctx,
		)
		return backoff.Retry(operation, policy)
	})

	if err != nil {
		g.logger.Warn("Text generation call failed",
			zap.String("model", string(g.model)),
			zap.Error(err),
		)
		return "", err
	}

	return text, nil
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		statusCode := apiErr.StatusCode
		return statusCode == 429 || statusCode >= 500
	}

	return false
}
