package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/xiaot623/tripmate/internal/domain"
)

// GeminiClient implements Gateway on top of Google's Gemini SDK.
type GeminiClient struct {
	client   *genai.Client
	sampling Sampling
}

// NewGeminiClient initializes a new Gemini client. Extra options are passed
// to the SDK after the API key.
func NewGeminiClient(ctx context.Context, apiKey string, sampling Sampling, opts ...option.ClientOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, sampling: sampling}, nil
}

// Close cleans up the Gemini client resources.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// Complete implements Gateway. The history seeds a chat session and the
// system instruction, when present, is set on the model.
func (g *GeminiClient) Complete(ctx context.Context, model, systemInstruction string, history []domain.ChatTurn, userText string) (string, error) {
	gm := g.client.GenerativeModel(model)
	if g.sampling.Temperature != nil {
		gm.SetTemperature(float32(*g.sampling.Temperature))
	}
	if g.sampling.MaxTokens > 0 {
		gm.SetMaxOutputTokens(int32(g.sampling.MaxTokens))
	}
	if systemInstruction != "" {
		gm.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))
	}

	cs := gm.StartChat()
	cs.History = geminiHistory(history)

	resp, err := cs.SendMessage(ctx, genai.Text(userText))
	if err != nil {
		return "", &TransportError{Model: model, Err: err}
	}

	return candidateText(model, resp)
}

func geminiHistory(history []domain.ChatTurn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := "user"
		if turn.Role == domain.RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}
	return out
}

func candidateText(model string, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &MalformedResponseError{Model: model, Reason: "no response candidates"}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", &MalformedResponseError{Model: model, Reason: "candidate has no text"}
	}
	return sb.String(), nil
}
