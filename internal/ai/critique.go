package ai

import (
	"context"
	"fmt"
	"strings"
)

const critiqueSystem = `You are an expert editor for a small print magazine. Critique the text for clarity, tone and logical flow. Answer in concise bullet points.`

// CritiqueSection returns editorial feedback for a section's text.
func (c *OllamaClient) CritiqueSection(ctx context.Context, title, content string) (string, error) {
	prompt := fmt.Sprintf("Section: %s\n\n%s", title, content)

	resp, err := c.GenerateCompletion(ctx, critiqueSystem, prompt, false)
	if err != nil {
		return "", err
	}

	feedback := strings.TrimSpace(resp)
	if feedback == "" {
		return "", fmt.Errorf("ollama returned an empty critique")
	}
	return feedback, nil
}
