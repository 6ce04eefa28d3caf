package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// ExtractedOpportunity is one funding call as the model reports it. All
// fields are raw; the ingest pipeline normalizes and validates them.
type ExtractedOpportunity struct {
	FunderName    string         `json:"funder_name"`
	ProgrammeName string         `json:"programme_name"`
	Deadline      string         `json:"deadline"`
	Amount        string         `json:"amount"`
	Eligibility   map[string]any `json:"eligibility_criteria"`
	BudgetRules   map[string]any `json:"budget_rules"`
}

const extractSystem = `You are a funding research assistant for a small creative studio. You read calls for funding and list every distinct opportunity they describe.`

const extractPrompt = `Extract every funding opportunity from the text below.

Text:
%s

Instructions:
1. One entry per distinct programme. Skip programmes with no funder.
2. deadline is the application closing date, ISO 8601 (YYYY-MM-DD) when possible, otherwise as written.
3. amount is the award amount exactly as written (e.g. "up to £10,000"), or "".
4. eligibility_criteria lists who may apply as short key/value pairs.
5. budget_rules lists spending rules (match funding, caps) as short key/value pairs.

JSON Schema:
{
	"opportunities": [
		{
			"funder_name": "string",
			"programme_name": "string",
			"deadline": "YYYY-MM-DD",
			"amount": "string",
			"eligibility_criteria": {},
			"budget_rules": {}
		}
	]
}

Respond ONLY with the JSON object. Use an empty list when the text has no opportunities.`

// ExtractOpportunities asks the model for the opportunities described in text.
// JSON mode is tried first; on failure it falls back to text mode and recovers
// the first JSON value from the reply.
func (c *OllamaClient) ExtractOpportunities(ctx context.Context, text string) ([]ExtractedOpportunity, error) {
	prompt := fmt.Sprintf(extractPrompt, text)

	resp, err := c.GenerateCompletion(ctx, extractSystem, prompt, true)
	if err == nil {
		if items, parseErr := parseExtraction(resp); parseErr == nil {
			return items, nil
		} else {
			slog.Warn("json mode reply did not parse, retrying in text mode", "err", parseErr)
		}
	} else {
		slog.Warn("json mode generation failed, retrying in text mode", "err", err)
	}

	resp, err = c.GenerateCompletion(ctx, extractSystem, prompt, false)
	if err != nil {
		return nil, err
	}

	items, err := parseExtraction(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extraction after retry: %w", err)
	}
	return items, nil
}

// parseExtraction accepts a wrapped {"opportunities": [...]} object, a bare
// array or a single opportunity object.
func parseExtraction(resp string) ([]ExtractedOpportunity, error) {
	cleaned := strings.TrimSpace(resp)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if jsonStr, ok := extractFirstJSONValue(cleaned); ok {
		cleaned = jsonStr
	}

	if strings.HasPrefix(cleaned, "[") {
		var items []ExtractedOpportunity
		if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var wrapped struct {
		Opportunities *[]ExtractedOpportunity `json:"opportunities"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Opportunities != nil {
		return *wrapped.Opportunities, nil
	}

	var single ExtractedOpportunity
	if err := json.Unmarshal([]byte(cleaned), &single); err != nil {
		return nil, err
	}
	if single.FunderName == "" && single.ProgrammeName == "" {
		return nil, nil
	}
	return []ExtractedOpportunity{single}, nil
}

// extractFirstJSONValue finds the first outermost balanced {...} or [...].
func extractFirstJSONValue(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return "", false
	}

	opener, closer := s[start], byte('}')
	if opener == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch char {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
