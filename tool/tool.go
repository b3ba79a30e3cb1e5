package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Identity is the acting user a tool call runs on behalf of. It is
// propagated from the session context by the API layer.
type Identity struct {
	UserID    string
	CompanyID string
	Name      string
}

// Contract is the typed description of a tool that is shown to the model
// and enforced at the executor boundary. Schemas are immutable once the
// contract is registered.
type Contract struct {
	Name         string
	Description  string
	InputSchema  json.RawMessage
	OutputSchema json.RawMessage
}

// Handler executes a tool call with already-validated raw arguments.
type Handler func(ctx context.Context, caller Identity, args json.RawMessage) (any, error)

type Tool struct {
	Contract Contract
	Handler  Handler
}

// NewTool builds a tool from a typed handler. Input and output schemas are
// reflected from the Go types; the returned handler unmarshals the raw
// arguments into In before delegating.
func NewTool[In, Out any](name, description string, handler func(ctx context.Context, caller Identity, input In) (Out, error)) Tool {
	var in In
	var out Out

	generic := func(ctx context.Context, caller Identity, args json.RawMessage) (any, error) {
		var input In
		if err := json.Unmarshal(args, &input); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		return handler(ctx, caller, input)
	}

	return Tool{
		Contract: Contract{
			Name:         name,
			Description:  description,
			InputSchema:  reflectSchema(in),
			OutputSchema: reflectSchema(out),
		},
		Handler: generic,
	}
}

func reflectSchema(v any) json.RawMessage {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(v)

	// Object schemas are flattened to the bare {type, properties, required}
	// form the model providers expect; arrays and scalars keep the full
	// reflected schema minus the $schema marker, which the validator does
	// not understand.
	if schema.Type == "object" {
		object := map[string]any{
			"type":       "object",
			"properties": schema.Properties,
		}
		if len(schema.Required) > 0 {
			object["required"] = schema.Required
		}
		return mustMarshal(object)
	}

	raw := mustMarshal(schema)
	var plain map[string]any
	if err := json.Unmarshal(raw, &plain); err != nil {
		panic(fmt.Sprintf("reflect tool schema: %v", err))
	}
	delete(plain, "$schema")
	return mustMarshal(plain)
}

func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		// Reflection output always marshals; reaching this is a
		// programming error in the tool definition itself.
		panic(fmt.Sprintf("reflect tool schema: %v", err))
	}
	return raw
}
