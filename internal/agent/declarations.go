package agent

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"

	"github.com/jonathan/job-harvester/internal/schemas"
)

// jsonSchema is the subset of JSON Schema used by the tool definitions.
type jsonSchema struct {
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Properties  map[string]*jsonSchema `json:"properties"`
	Items       *jsonSchema            `json:"items"`
	Required    []string               `json:"required"`
	Enum        []string               `json:"enum"`
	Format      string                 `json:"format"`
}

// Declarations builds a function declaration for every tool schema.
func Declarations() ([]*genai.FunctionDeclaration, error) {
	names := schemas.ToolNames()
	decls := make([]*genai.FunctionDeclaration, 0, len(names))
	for _, name := range names {
		raw, err := schemas.ToolSchema(name)
		if err != nil {
			return nil, err
		}
		var s jsonSchema
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("failed to parse schema for %s: %w", name, err)
		}

		decl := &genai.FunctionDeclaration{Name: name, Description: s.Description}
		if len(s.Properties) > 0 {
			params, err := toGenai(&s)
			if err != nil {
				return nil, fmt.Errorf("tool %s: %w", name, err)
			}
			decl.Parameters = params
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func toGenai(s *jsonSchema) (*genai.Schema, error) {
	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
	}

	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			p, err := toGenai(prop)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			out.Properties[name] = p
		}
	case "array":
		out.Type = genai.TypeArray
		if s.Items != nil {
			items, err := toGenai(s.Items)
			if err != nil {
				return nil, err
			}
			out.Items = items
		}
	case "string":
		out.Type = genai.TypeString
		if s.Format == "date-time" || s.Format == "enum" {
			out.Format = s.Format
		}
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", s.Type)
	}
	return out, nil
}
