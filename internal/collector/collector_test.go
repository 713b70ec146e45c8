package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiaot623/tripmate/internal/adapter/llm"
	"github.com/xiaot623/tripmate/internal/domain"
	"github.com/xiaot623/tripmate/internal/fallback"
)

// fakeGateway captures every request and answers with a fixed reply.
type fakeGateway struct {
	reply   string
	err     error
	calls   int
	system  string
	history []domain.ChatTurn
	user    string
}

func (f *fakeGateway) Complete(ctx context.Context, model, systemInstruction string, history []domain.ChatTurn, userText string) (string, error) {
	f.calls++
	f.system = systemInstruction
	f.history = append([]domain.ChatTurn(nil), history...)
	f.user = userText
	return f.reply, f.err
}

func newCollector(gw llm.Gateway) *Collector {
	chain := fallback.NewChain(gw, []string{"m1", "m2"}, zap.NewNop())
	return New(chain, zap.NewNop())
}

func TestSubmitUserTurnDropsGreeting(t *testing.T) {
	gw := &fakeGateway{reply: "When are you going?"}
	c := newCollector(gw)

	history := []domain.ChatTurn{domain.AssistantTurn(DefaultGreeting)}
	res, err := c.SubmitUserTurn(context.Background(), history, "Kyoto please")
	require.NoError(t, err)

	assert.Empty(t, gw.history, "the local greeting must not be sent")
	assert.Equal(t, SystemInstruction, gw.system)
	assert.Equal(t, "Kyoto please", gw.user)

	assert.Equal(t, "When are you going?", res.DisplayText)
	assert.Nil(t, res.Extracted)
	assert.Equal(t, StateGathering, res.State)
	assert.Equal(t, "m1", res.Model)
	assert.Equal(t, []domain.ChatTurn{
		domain.AssistantTurn(DefaultGreeting),
		domain.UserTurn("Kyoto please"),
		domain.AssistantTurn("When are you going?"),
	}, res.History)
	assert.Len(t, history, 1, "input history must not be modified")
}

func TestSubmitUserTurnSendsPriorTurns(t *testing.T) {
	gw := &fakeGateway{reply: "ok"}
	c := newCollector(gw)

	history := []domain.ChatTurn{
		domain.AssistantTurn(DefaultGreeting),
		domain.UserTurn("Rome"),
		domain.AssistantTurn("When?"),
	}
	_, err := c.SubmitUserTurn(context.Background(), history, "May")
	require.NoError(t, err)
	assert.Equal(t, history[1:], gw.history)
}

func TestSubmitUserTurnExtractsCompletion(t *testing.T) {
	reply := "Great, you're all set!\n```json\n{\"COMPLETE\": true, \"destination\": \"Lisbon\", \"startDate\": \"2025-05-01\", \"endDate\": \"2025-05-04\", \"minBudget\": 800, \"maxBudget\": \"1500\", \"interests\": [\"Food\", \"History\", \"Food\"], \"prompt\": \"slow travel\"}\n```"
	gw := &fakeGateway{reply: reply}
	c := newCollector(gw)

	res, err := c.SubmitUserTurn(context.Background(), nil, "food and history")
	require.NoError(t, err)
	assert.Equal(t, "Great, you're all set!", res.DisplayText)
	assert.Equal(t, StateComplete, res.State)
	require.NotNil(t, res.Extracted)
	assert.Equal(t, domain.TripParameters{
		Destination:   "Lisbon",
		StartDate:     "2025-05-01",
		EndDate:       "2025-05-04",
		MinBudget:     domain.Budget(800),
		MaxBudget:     domain.Budget(1500),
		Interests:     []string{"Food", "History"},
		FreeformNotes: "slow travel",
	}, *res.Extracted)
	assert.Equal(t, domain.AssistantTurn("Great, you're all set!"), res.History[len(res.History)-1])
}

func TestSubmitUserTurnMalformedBlockLeavesText(t *testing.T) {
	reply := "Almost there\n```json\n{\"COMPLETE\": true, \"destination\": }\n```"
	c := newCollector(&fakeGateway{reply: reply})

	res, err := c.SubmitUserTurn(context.Background(), nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, reply, res.DisplayText)
	assert.Nil(t, res.Extracted)
	assert.Equal(t, StateGathering, res.State)
}

func TestSubmitUserTurnEmptyInput(t *testing.T) {
	gw := &fakeGateway{reply: "unused"}
	c := newCollector(gw)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := c.SubmitUserTurn(context.Background(), nil, text)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Zero(t, gw.calls)
}

func TestSubmitUserTurnUnavailable(t *testing.T) {
	gw := &fakeGateway{err: &llm.TransportError{Model: "m", StatusCode: 503, Message: "down"}}
	c := newCollector(gw)

	res, err := c.SubmitUserTurn(context.Background(), nil, "hello")
	assert.Nil(t, res)

	var unavailable *AssistantUnavailableError
	require.True(t, errors.As(err, &unavailable))
	var exhausted *fallback.AllModelsExhaustedError
	assert.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 2, gw.calls)
}

func TestWithSystemInstruction(t *testing.T) {
	gw := &fakeGateway{reply: "ok"}
	chain := fallback.NewChain(gw, []string{"m1"}, zap.NewNop())
	c := New(chain, zap.NewNop(), WithSystemInstruction("be brief"))

	_, err := c.SubmitUserTurn(context.Background(), nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "be brief", gw.system)
}
