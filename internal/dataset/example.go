package dataset

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

// maxSynthDepth caps recursion through nested and self-referencing schemas
const maxSynthDepth = 6

// synthesizer builds a best-effort example payload from a response schema,
// used when an operation declares no literal example. Per-field examples and
// enum values take precedence over type defaults.
type synthesizer struct{}

func newSynthesizer() *synthesizer {
	return &synthesizer{}
}

// fromResponse synthesizes an example from the preferred media type schema of
// a response. Empty objects and arrays are treated as no example.
func (s *synthesizer) fromResponse(resp *openapi3.Response) interface{} {
	schema := mediaSchema(resp.Content)
	if schema == nil {
		return nil
	}
	ex := s.build(schema, 0)
	if m, ok := ex.(map[string]interface{}); ok && len(m) == 0 {
		return nil
	}
	if a, ok := ex.([]interface{}); ok && len(a) == 0 {
		return nil
	}
	return ex
}

func (s *synthesizer) build(ref *openapi3.SchemaRef, depth int) interface{} {
	if ref == nil || ref.Value == nil || depth > maxSynthDepth {
		return nil
	}
	schema := ref.Value

	if schema.Example != nil {
		return schema.Example
	}
	if len(schema.Enum) > 0 {
		return schema.Enum[0]
	}

	if len(schema.OneOf) > 0 {
		return s.build(schema.OneOf[0], depth+1)
	}
	if len(schema.AnyOf) > 0 {
		return s.build(schema.AnyOf[0], depth+1)
	}

	if len(schema.AllOf) > 0 {
		merged := make(map[string]interface{})
		for _, part := range schema.AllOf {
			if ex, ok := s.build(part, depth+1).(map[string]interface{}); ok {
				for key, val := range ex {
					merged[key] = val
				}
			}
		}
		if len(merged) > 0 {
			return merged
		}
		return s.build(schema.AllOf[0], depth+1)
	}

	isType := func(t string) bool { return schema.Type != nil && schema.Type.Is(t) }

	if isType("object") || len(schema.Properties) > 0 {
		result := make(map[string]interface{})
		props := make([]string, 0, len(schema.Properties))
		for prop := range schema.Properties {
			props = append(props, prop)
		}
		sort.Strings(props)
		for _, prop := range props {
			if val := s.build(schema.Properties[prop], depth+1); val != nil {
				result[prop] = val
			}
		}
		return result
	}

	if isType("array") {
		if schema.Items != nil {
			if item := s.build(schema.Items, depth+1); item != nil {
				return []interface{}{item}
			}
		}
		return []interface{}{}
	}

	switch {
	case isType("integer"), isType("number"):
		return 0
	case isType("boolean"):
		return true
	case isType("string"), schema.Type == nil:
		return ""
	}
	return nil
}
