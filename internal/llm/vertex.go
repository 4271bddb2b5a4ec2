package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
)

// VertexBackend calls Gemini through Vertex AI with application credentials.
type VertexBackend struct {
	client *gcp.VertexClient
}

func NewVertexBackend(client *gcp.VertexClient) *VertexBackend {
	return &VertexBackend{client: client}
}

func (b *VertexBackend) Name() string { return "vertex" }

func (b *VertexBackend) Generate(ctx context.Context, req Request) (string, error) {
	model := b.client.Model(req.SystemInstruction)
	parts := make([]genai.Part, 0, len(req.UserMessages))
	for _, m := range req.UserMessages {
		parts = append(parts, genai.Text(m))
	}
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from vertex: %w", err)
	}
	return vertexText(resp), nil
}

func (b *VertexBackend) Close() error {
	return b.client.Close()
}

func vertexText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
