package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/xiaot623/tripmate/internal/domain"
)

// GeminiPrefix marks model IDs that go straight to the Gemini SDK, e.g.
// "genai:gemini-2.0-flash".
const GeminiPrefix = "genai:"

type route struct {
	prefix  string
	gateway Gateway
}

// Router dispatches a model ID to a gateway by prefix. The prefix is stripped
// before the call; IDs matching no prefix go to the default gateway.
type Router struct {
	routes   []route
	fallback Gateway
}

// NewRouter creates a router with the given default gateway.
func NewRouter(defaultGateway Gateway) *Router {
	return &Router{fallback: defaultGateway}
}

// Handle registers gw for model IDs starting with prefix. The first matching
// registration wins.
func (r *Router) Handle(prefix string, gw Gateway) {
	r.routes = append(r.routes, route{prefix: prefix, gateway: gw})
}

// Complete implements Gateway.
func (r *Router) Complete(ctx context.Context, model, systemInstruction string, history []domain.ChatTurn, userText string) (string, error) {
	for _, rt := range r.routes {
		if strings.HasPrefix(model, rt.prefix) {
			return rt.gateway.Complete(ctx, strings.TrimPrefix(model, rt.prefix), systemInstruction, history, userText)
		}
	}
	if r.fallback == nil {
		return "", &TransportError{Model: model, Message: "no gateway configured for model"}
	}
	return r.fallback.Complete(ctx, model, systemInstruction, history, userText)
}

// ModelLister is implemented by gateways that can enumerate provider models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]Model, error)
}

var (
	_ ModelLister = (*Client)(nil)
	_ ModelLister = (*Router)(nil)
	_ ModelLister = (*MockClient)(nil)
)

// ListModels asks the default gateway for its model catalogue.
func (r *Router) ListModels(ctx context.Context) ([]Model, error) {
	lister, ok := r.fallback.(ModelLister)
	if !ok {
		return nil, errors.New("default gateway cannot list models")
	}
	return lister.ListModels(ctx)
}
