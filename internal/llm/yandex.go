package llm

import (
	"context"
	"fmt"

	"github.com/Morwran/yagpt"
)

// YandexClient calls YandexGPT Lite. yagpt exposes no output token limit,
// so replies from this provider are bounded only by the generator's cut.
type YandexClient struct {
	ya       yagpt.YaGPTFace
	iamToken string
}

// NewYandex exchanges the OAuth token for an IAM token once, at startup.
func NewYandex(oauthToken, folderID string) (*YandexClient, error) {
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init yandex iam: %w", err)
	}
	token, err := iam.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create iam token: %w", err)
	}

	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to init yagpt: %w", err)
	}
	return &YandexClient{ya: ya, iamToken: token.IamToken}, nil
}

func (c *YandexClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	resp, err := c.ya.CompletionWithCtx(ctx, c.iamToken, toYaMessages(messages))
	if err != nil {
		return Response{}, fmt.Errorf("yagpt completion failed: %w", err)
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		return Response{}, fmt.Errorf("yagpt returned empty response")
	}
	return Response{
		Content:          resp.Alternatives[0].Message.Content,
		Model:            yagpt.YaModelLite,
		PromptTokens:     int(resp.Usage.InputTextTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}, nil
}

// toYaMessages keeps system/user roles and maps any other role to
// "assistant", the only other role YandexGPT accepts.
func toYaMessages(messages []Message) []yagpt.Message {
	out := make([]yagpt.Message, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != "system" && role != "user" {
			role = "assistant"
		}
		out = append(out, yagpt.Message{Role: role, Content: m.Content})
	}
	return out
}
