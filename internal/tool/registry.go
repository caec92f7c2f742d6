package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Registry routes tool calls to their handlers. The registered set is fixed
// at construction; there is no runtime registration.
type Registry struct {
	handlers map[Name]Handler
	order    []Name
	logger   *zap.Logger
}

// NewRegistry creates a Registry over the given handlers.
//
// Precondition: every handler's Spec().Name must be in the tool set, and no
// two handlers may share a name.
func NewRegistry(logger *zap.Logger, handlers ...Handler) (*Registry, error) {
	r := &Registry{
		handlers: make(map[Name]Handler, len(handlers)),
		logger:   logger,
	}
	for _, h := range handlers {
		name := h.Spec().Name
		if !Valid(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
		}
		if _, exists := r.handlers[name]; exists {
			return nil, fmt.Errorf("duplicate tool handler: %q", name)
		}
		r.handlers[name] = h
		r.order = append(r.order, name)
	}
	return r, nil
}

// Specs returns the registered tool specs in registration order, for
// conversion into the model's tool declarations.
func (r *Registry) Specs() []Spec {
	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.handlers[name].Spec())
	}
	return specs
}

// Dispatch runs the named tool and folds the outcome into a Result. Handler
// errors and unknown names become failure payloads carrying the error text,
// so one bad call never tears down the conversation loop.
//
// Postcondition: the Result's Body is valid JSON with a boolean "success"
// equal to Result.OK.
func (r *Registry) Dispatch(ctx context.Context, name Name, input json.RawMessage) Result {
	h, ok := r.handlers[name]
	if !ok {
		r.logger.Warn("tool call rejected", zap.String("tool", string(name)))
		return failure(name, fmt.Errorf("%w: %q", ErrUnknownTool, name))
	}

	payload, err := h.Invoke(ctx, input)
	if err != nil {
		r.logger.Warn("tool call failed",
			zap.String("tool", string(name)),
			zap.Error(err),
		)
		return failure(name, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["success"] = true

	r.logger.Debug("tool call dispatched", zap.String("tool", string(name)))
	return Result{Tool: name, OK: true, Body: marshalBody(payload)}
}

func failure(name Name, err error) Result {
	return Result{
		Tool: name,
		Body: marshalBody(map[string]any{"success": false, "error": err.Error()}),
	}
}

// marshalBody renders a payload, degrading to a generic failure body when a
// handler returned something JSON cannot represent.
func marshalBody(payload map[string]any) json.RawMessage {
	b, err := json.Marshal(payload)
	if err != nil {
		return json.RawMessage(`{"success":false,"error":"tool result not serializable"}`)
	}
	return b
}
