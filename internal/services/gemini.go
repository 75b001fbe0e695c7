package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"alfredoptarigan/resume-analyzer/internal/config"
)

// TaskConfig carries the sampling parameters of one model task. Zero TopK
// and TopP leave the model defaults in place.
type TaskConfig struct {
	Name            string
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32
}

// TaskConfigs groups the per-task parameters used by the analyzer.
type TaskConfigs struct {
	Analysis    TaskConfig
	Improvement TaskConfig
	Rewrite     TaskConfig
}

func DefaultTaskConfigs() TaskConfigs {
	return TaskConfigs{
		Analysis:    TaskConfig{Name: "analysis", Temperature: 0.3, MaxOutputTokens: 3000},
		Improvement: TaskConfig{Name: "improvement", Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 2048},
		Rewrite:     TaskConfig{Name: "rewrite", Temperature: 0.4, MaxOutputTokens: 4000},
	}
}

// TaskConfigsFrom builds the per-task parameters from the loaded configuration.
func TaskConfigsFrom(gen config.GenerationConfig) TaskConfigs {
	task := func(name string, p config.TaskParams) TaskConfig {
		return TaskConfig{
			Name:            name,
			Temperature:     p.Temperature,
			TopK:            p.TopK,
			TopP:            p.TopP,
			MaxOutputTokens: p.MaxOutputTokens,
		}
	}
	return TaskConfigs{
		Analysis:    task("analysis", gen.Analysis),
		Improvement: task("improvement", gen.Improvement),
		Rewrite:     task("rewrite", gen.Rewrite),
	}
}

// ModelGateway sends one prompt to the generative model and returns its raw text.
type ModelGateway interface {
	Generate(ctx context.Context, prompt string, task TaskConfig) (string, error)
}

type GeminiOptions struct {
	APIKey   string
	Model    string
	Backend  string
	Project  string
	Location string
}

type geminiGateway struct {
	client    *genai.Client
	modelName string
}

func NewGeminiGateway(ctx context.Context, opts GeminiOptions) (ModelGateway, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.Backend == "vertex" {
		clientConfig = &genai.ClientConfig{
			Project:  opts.Project,
			Location: opts.Location,
			Backend:  genai.BackendVertexAI,
		}
	} else if opts.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	return &geminiGateway{
		client:    client,
		modelName: modelName,
	}, nil
}

// Generate implements ModelGateway.
func (g *geminiGateway) Generate(ctx context.Context, prompt string, task TaskConfig) (string, error) {
	temperature := task.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: task.MaxOutputTokens,
	}
	if task.TopK > 0 {
		topK := task.TopK
		config.TopK = &topK
	}
	if task.TopP > 0 {
		topP := task.TopP
		config.TopP = &topP
	}

	log.Printf("🤖 Sending %s request to %s (%d prompt chars)\n", task.Name, g.modelName, len(prompt))

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		log.Printf("❌ Gemini API error: %v\n", err)
		return "", fmt.Errorf("%w: %s: %v", ErrModelInvocationFailed, task.Name, err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: %s: nil response", ErrModelInvocationFailed, task.Name)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		reason := "no text content in response"
		if len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].FinishReason != "" {
			reason = fmt.Sprintf("%s (finish reason %s)", reason, resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("%w: %s: %s", ErrModelInvocationFailed, task.Name, reason)
	}

	log.Printf("📊 Gemini %s response received (%d chars)\n", task.Name, len(text))

	return text, nil
}

type retryingGateway struct {
	next        ModelGateway
	maxAttempts int
	timeout     time.Duration
	backoff     time.Duration
}

// NewRetryingGateway layers a per-attempt timeout and bounded retries around
// a gateway. maxAttempts below 2 and a zero timeout return next unchanged.
func NewRetryingGateway(next ModelGateway, maxAttempts int, timeout time.Duration) ModelGateway {
	if maxAttempts < 2 && timeout <= 0 {
		return next
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &retryingGateway{
		next:        next,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		backoff:     time.Second,
	}
}

// Generate implements ModelGateway.
func (r *retryingGateway) Generate(ctx context.Context, prompt string, task TaskConfig) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		result, err := r.attempt(ctx, prompt, task)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if attempt == r.maxAttempts {
			break
		}

		log.Printf("⚠️  Attempt %d/%d for %s failed: %v. Retrying...\n", attempt, r.maxAttempts, task.Name, err)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: context cancelled: %v", ErrModelInvocationFailed, ctx.Err())
		case <-time.After(r.backoff * time.Duration(attempt)):
		}
	}

	if r.maxAttempts == 1 {
		return "", lastErr
	}
	return "", fmt.Errorf("failed after %d attempts: %w", r.maxAttempts, lastErr)
}

func (r *retryingGateway) attempt(ctx context.Context, prompt string, task TaskConfig) (string, error) {
	if r.timeout <= 0 {
		return r.next.Generate(ctx, prompt, task)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.next.Generate(attemptCtx, prompt, task)
}
