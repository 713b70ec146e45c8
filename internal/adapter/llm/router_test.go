package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/tripmate/internal/domain"
)

type recordingGateway struct {
	name   string
	models []string
}

func (g *recordingGateway) Complete(ctx context.Context, model, systemInstruction string, history []domain.ChatTurn, userText string) (string, error) {
	g.models = append(g.models, model)
	return g.name, nil
}

func TestRouterDispatchesByPrefix(t *testing.T) {
	def := &recordingGateway{name: "default"}
	gemini := &recordingGateway{name: "gemini"}
	router := NewRouter(def)
	router.Handle(GeminiPrefix, gemini)

	text, err := router.Complete(context.Background(), "genai:gemini-2.0-flash", "", nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "gemini", text)
	assert.Equal(t, []string{"gemini-2.0-flash"}, gemini.models)

	text, err = router.Complete(context.Background(), "google/gemini-flash-1.5", "", nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "default", text)
	assert.Equal(t, []string{"google/gemini-flash-1.5"}, def.models)
}

func TestRouterWithoutDefault(t *testing.T) {
	router := NewRouter(nil)
	_, err := router.Complete(context.Background(), "openai/gpt-4o-mini", "", nil, "hi")

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "openai/gpt-4o-mini", transportErr.Model)
}

func TestRouterListModelsRequiresLister(t *testing.T) {
	router := NewRouter(&recordingGateway{})
	_, err := router.ListModels(context.Background())
	assert.Error(t, err)
}
