// Package ai wraps the external feature-extraction collaborator: a model
// that turns an image URL into a fixed-length feature vector.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/SurinderTech/findify-finder/internal/profile"
)

// Extractor produces a feature vector for an image URL.
type Extractor interface {
	// ExtractFeatures returns a vector of fixed length, or an error.
	ExtractFeatures(ctx context.Context, imageURL string) ([]float32, error)
	// Dimension is the fixed output length of ExtractFeatures.
	Dimension() int
	// Model identifies the extraction model, used to key stored vectors.
	Model() string
}

// Config holds the extraction provider configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimension  int
	MaxRetries int
	Timeout    time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model:      "clip-vit-base-patch16",
		Dimension:  512,
		MaxRetries: 3,
		Timeout:    30 * time.Second,
	}
}

// ConfigFromProfile builds the extraction config from the service profile.
func ConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		BaseURL:    p.ExtractorBaseURL,
		APIKey:     p.ExtractorAPIKey,
		Model:      p.ExtractorModel,
		Dimension:  p.ExtractorDim,
		MaxRetries: 3,
		Timeout:    p.ExtractorTimeout,
	}
}

// Provider extracts image feature vectors through an OpenAI-compatible
// embeddings endpoint serving an image-embedding model (the input is the
// image URL). Requests are rate limited to avoid overwhelming the model
// server during batch runs.
type Provider struct {
	client  *openai.Client
	config  *Config
	limiter *rate.Limiter
}

// NewProvider creates a new extraction provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "clip-vit-base-patch16"
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 512
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		// 10 extractions per second with a burst of 20.
		limiter: rate.NewLimiter(rate.Every(time.Second/10), 20),
	}, nil
}

// ExtractFeatures generates a feature vector for the given image URL.
func (p *Provider) ExtractFeatures(ctx context.Context, imageURL string) ([]float32, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("image URL is empty")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result []float32
	err := p.doWithRetry(ctx, func() error {
		req := openai.EmbeddingRequest{
			Input: []string{imageURL},
			Model: openai.EmbeddingModel(p.config.Model),
		}

		resp, err := p.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("empty embedding response")
		}
		result = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract features: %w", err)
	}
	if len(result) != p.config.Dimension {
		return nil, fmt.Errorf("extractor returned %d dimensions, expected %d", len(result), p.config.Dimension)
	}

	return result, nil
}

// Dimension returns the fixed output length.
func (p *Provider) Dimension() int {
	return p.config.Dimension
}

// Model returns the extraction model identifier.
func (p *Provider) Model() string {
	return p.config.Model
}

// doWithRetry executes a function with exponential backoff retry.
func (p *Provider) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < p.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("extraction request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}

// SafeExtract is ExtractFeatures for callers that treat a missing vector
// as unknown rather than zero: any failure is logged and nil is returned
// in place of an error.
func SafeExtract(ctx context.Context, extractor Extractor, imageURL string) []float32 {
	if extractor == nil || imageURL == "" {
		return nil
	}
	vector, err := extractor.ExtractFeatures(ctx, imageURL)
	if err != nil {
		slog.Warn("feature extraction failed",
			slog.String("image_url", imageURL),
			slog.String("error", err.Error()))
		return nil
	}
	return vector
}
