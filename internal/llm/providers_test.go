package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiRequest_FoldsSystemMessages(t *testing.T) {
	contents, config := geminiRequest([]Message{
		{Role: "system", Content: "be brief"},
		{Role: "system", Content: "be kind"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "reply please"},
	}, 150)

	assert.Equal(t, int32(150), config.MaxOutputTokens)
	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Equal(t, "be brief\n\nbe kind", config.SystemInstruction.Parts[0].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	assert.Equal(t, "reply please", contents[2].Parts[0].Text)
}

func TestGeminiRequest_NoSystemInstruction(t *testing.T) {
	_, config := geminiRequest([]Message{{Role: "user", Content: "hello"}}, 10)
	assert.Nil(t, config.SystemInstruction)
}

func TestGeminiResponse(t *testing.T) {
	out, err := geminiResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "hi "}, nil, {Text: "there"}}}}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount: 7, CandidatesTokenCount: 2, TotalTokenCount: 9,
		},
	}, "gemini-test")
	require.NoError(t, err)
	assert.Equal(t, "hi there", out.Content)
	assert.Equal(t, "gemini-test", out.Model)
	assert.Equal(t, 9, out.TotalTokens)

	_, err = geminiResponse(&genai.GenerateContentResponse{}, "gemini-test")
	assert.Error(t, err)
	_, err = geminiResponse(nil, "gemini-test")
	assert.Error(t, err)
}

func TestToYaMessages(t *testing.T) {
	got := toYaMessages([]Message{
		{Role: "system", Content: "s"},
		{Role: "user", Content: "u"},
		{Role: "model", Content: "m"},
	})
	require.Len(t, got, 3)
	assert.Equal(t, "system", got[0].Role)
	assert.Equal(t, "user", got[1].Role)
	assert.Equal(t, "assistant", got[2].Role)
	assert.Equal(t, "m", got[2].Content)
}
