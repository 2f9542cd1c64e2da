package llm_test

import (
	"encoding/json"
	"testing"

	"github.com/Janldeboer/Agentless/llm"
	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "fenced block",
			content: "Here you go:\n```json\n{\"a\": 1}\n```\nHope that helps!",
			want:    `{"a": 1}`,
		},
		{
			name:    "fence without language tag",
			content: "```\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
		},
		{
			name:    "bare object in prose",
			content: `The answer is {"result": "ok"} as requested.`,
			want:    `{"result": "ok"}`,
		},
		{
			name:    "array",
			content: "```json\n[1, 2, 3]\n```",
			want:    `[1, 2, 3]`,
		},
		{
			name:    "trailing comma removed",
			content: `{"items": [1, 2,], "done": true,}`,
			want:    `{"items": [1, 2], "done": true}`,
		},
		{
			name:    "no json",
			content: "I could not produce any structured output.",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := llm.ExtractJSON(tt.content)
			assert.Equal(t, tt.want, got)
			if got != "" {
				assert.True(t, json.Valid([]byte(got)), "extracted payload must parse")
			}
		})
	}
}
