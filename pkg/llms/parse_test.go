package llms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
		want     evaluationResponse
	}{
		{
			name:     "clean JSON",
			response: `{"evaluation": "solid", "score": 7.5}`,
			want:     evaluationResponse{Evaluation: "solid", Score: 7.5},
		},
		{
			name:     "markdown fence",
			response: "```json\n{\"evaluation\": \"fine\", \"score\": 6}\n```",
			want:     evaluationResponse{Evaluation: "fine", Score: 6},
		},
		{
			name:     "prose around object",
			response: "Here is my evaluation:\n{\"evaluation\": \"ok\", \"score\": 5}\nHope that helps!",
			want:     evaluationResponse{Evaluation: "ok", Score: 5},
		},
		{
			name:     "braces inside strings",
			response: `{"evaluation": "uses {variable} markers", "score": 8}`,
			want:     evaluationResponse{Evaluation: "uses {variable} markers", Score: 8},
		},
		{
			name:     "not JSON at all",
			response: "I would rate this prompt a seven out of ten.",
			wantErr:  true,
		},
		{
			name:     "truncated object",
			response: `{"evaluation": "cut off`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out evaluationResponse
			err := decodeJSON(tt.response, &out)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.InvalidResponse, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDecodeJSONArray(t *testing.T) {
	var out variantsResponse
	err := decodeJSON("Sure!\n{\"prompts\": [\"a\", \"b\"]}", &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Prompts)
}

func TestExtractBalanced(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, extractBalanced(`junk {"a": 1} junk`))
	assert.Equal(t, `[1, 2]`, extractBalanced(`see [1, 2] there`))
	assert.Equal(t, "", extractBalanced("no json here"))
	assert.Equal(t, "", extractBalanced(`{"unclosed": true`))
}
