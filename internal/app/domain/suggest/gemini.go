package suggest

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.6),
			ResponseMIMEType: "application/json",
		},
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", g.model),
	))
	defer span.End()

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := result.Text()
	span.SetAttributes(attribute.Int("response.length", len(text)))
	return text, nil
}
