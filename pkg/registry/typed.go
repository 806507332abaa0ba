package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
)

// Define builds a tool definition whose parameters schema is reflected from
// the argument struct I. Fields tagged with omitempty are optional.
func Define[I any](name, description string) domain.Tool {
	var zero I
	return domain.Tool{
		Name:        name,
		Description: description,
		Parameters:  Schema(&zero),
	}
}

// Schema reflects a JSON Schema object for an argument struct.
func Schema(v any) map[string]any {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(v)

	data, err := json.Marshal(s)
	if err != nil {
		// Reflected schemas only contain JSON-safe values.
		panic(fmt.Sprintf("registry: marshal schema: %v", err))
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("registry: unmarshal schema: %v", err))
	}

	delete(out, "$schema")
	delete(out, "$id")
	out["type"] = "object"
	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}
	return out
}

// Typed adapts a handler that takes a decoded argument struct.
func Typed[I any](fn func(ctx context.Context, in *I) (any, error)) ToolFunction {
	return func(ctx context.Context, args map[string]any) (any, error) {
		var in I
		if err := Decode(args, &in); err != nil {
			return nil, err
		}
		return fn(ctx, &in)
	}
}

// Decode maps loosely typed arguments (as decoded from JSON) onto a struct
// using its json tags. Numeric strings are accepted for numeric fields.
func Decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}
	return nil
}
