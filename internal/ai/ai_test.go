package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name      string
		resp      string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "wrapped object",
			resp:      `{"opportunities":[{"funder_name":"Arts Council","programme_name":"Documentary Fund","deadline":"2025-06-30"}]}`,
			wantCount: 1,
		},
		{
			name:      "bare array in code fence",
			resp:      "```json\n[{\"funder_name\":\"A\",\"programme_name\":\"B\"},{\"funder_name\":\"C\",\"programme_name\":\"D\"}]\n```",
			wantCount: 2,
		},
		{
			name:      "chatter around the object",
			resp:      `Here you go: {"funder_name":"A","programme_name":"B","deadline":"2025-01-01"} Hope that helps.`,
			wantCount: 1,
		},
		{
			name:      "empty list",
			resp:      `{"opportunities": []}`,
			wantCount: 0,
		},
		{
			name:    "not json",
			resp:    "I could not find anything.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := parseExtraction(tt.resp)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, tt.wantCount)
		})
	}
}

func TestExtractFirstJSONValue_IgnoresBracesInStrings(t *testing.T) {
	got, ok := extractFirstJSONValue(`x {"a":"}{","b":[1,2]} y`)
	require.True(t, ok)
	assert.Equal(t, `{"a":"}{","b":[1,2]}`, got)
}

func TestExtractOpportunities_FallsBackToTextMode(t *testing.T) {
	var formats []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		formats = append(formats, req.Format)

		reply := "not json at all"
		if req.Format == "" {
			reply = `Sure! [{"funder_name":"Arts Council","programme_name":"Documentary Fund","deadline":"2025-06-30"}]`
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: reply, Done: true})
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "test-model", 0)
	items, err := client.ExtractOpportunities(context.Background(), "call text")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Documentary Fund", items[0].ProgrammeName)
	assert.Equal(t, []string{"json", ""}, formats)
}

func TestCritiqueSection_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "", 0)
	_, err := client.CritiqueSection(context.Background(), "Cover Story", "Some text")
	require.Error(t, err)
}
