package dataset

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"api-graph/internal/parser"
	"api-graph/internal/types"

	"github.com/getkin/kin-openapi/openapi3"
)

// methodOrder is the canonical operation order within a path item
var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// preferredStatuses is the precedence used when several response statuses
// carry an example or a schema
var preferredStatuses = []string{"200", "201", "202", "default"}

var refPattern = regexp.MustCompile(`#/components/schemas/([^/]+)$`)

// Builder turns parsed spec documents into endpoint records
type Builder struct {
	synthesize bool
}

// NewBuilder creates a new Builder. When synthesize is set, operations
// without a declared response example get one synthesized from the response
// schema.
func NewBuilder(synthesize bool) *Builder {
	return &Builder{synthesize: synthesize}
}

// Build extracts one endpoint record per declared (path, method) operation,
// preserving declaration order within each document and processing the
// documents in the given order. Entries without a usable path or operation
// object are skipped with a warning.
func (b *Builder) Build(docs []*parser.Document) []types.EndpointRecord {
	var records []types.EndpointRecord

	for _, doc := range docs {
		synth := newSynthesizer()

		for _, path := range doc.PathOrder {
			if strings.TrimSpace(path) == "" {
				fmt.Printf("warning: %s: skipping entry with empty path\n", doc.Name)
				continue
			}
			item := doc.Doc.Paths.Value(path)
			if item == nil {
				fmt.Printf("warning: %s: skipping unresolvable path %s\n", doc.Name, path)
				continue
			}

			for _, method := range methodOrder {
				op := item.GetOperation(method)
				if op == nil {
					continue
				}
				records = append(records, b.buildRecord(doc.Name, path, method, item, op, synth))
			}
		}
	}

	return records
}

func (b *Builder) buildRecord(source, path, method string, item *openapi3.PathItem, op *openapi3.Operation, synth *synthesizer) types.EndpointRecord {
	id := strings.TrimSpace(op.OperationID)
	if id == "" {
		id = method + " " + path
	}

	rec := types.EndpointRecord{
		ID:           id,
		Source:       source,
		Path:         path,
		Method:       method,
		Summary:      op.Summary,
		Description:  op.Description,
		Tags:         []string{},
		Parameters:   []types.ParamDescriptor{},
		ResponseRefs: []string{},
	}
	if len(op.Tags) > 0 {
		rec.Tags = append(rec.Tags, op.Tags...)
	}

	// Path-item level parameters apply to every operation and precede the
	// operation's own.
	params := append(append(openapi3.Parameters{}, item.Parameters...), op.Parameters...)
	for _, ref := range params {
		if ref == nil || ref.Value == nil {
			continue
		}
		p := ref.Value
		desc := types.ParamDescriptor{
			Name:     p.Name,
			Required: p.Required,
			Type:     schemaType(p.Schema),
		}
		switch p.In {
		case openapi3.ParameterInQuery:
			rec.Parameters = append(rec.Parameters, desc)
		case openapi3.ParameterInPath:
			rec.PathParams = append(rec.PathParams, desc)
		case openapi3.ParameterInHeader:
			rec.HeaderParams = append(rec.HeaderParams, desc)
		}
	}

	rec.ResponseRefs = collectResponseRefs(op.Responses)
	rec.ResponseExamples, rec.Example = extractExamples(op.Responses)

	if rec.Example == nil && b.synthesize {
		status, resp := preferredResponse(op.Responses)
		if resp != nil {
			if ex := synth.fromResponse(resp); ex != nil {
				rec.Example = ex
				rec.ResponseExamples = append(rec.ResponseExamples, types.ResponseExample{
					Status:      status,
					Description: responseDescription(resp),
					Example:     ex,
				})
			}
		}
	}

	return rec
}

// schemaType returns the declared primitive type of a parameter schema, or ""
func schemaType(ref *openapi3.SchemaRef) string {
	if ref == nil || ref.Value == nil || ref.Value.Type == nil {
		return ""
	}
	if ts := ref.Value.Type.Slice(); len(ts) > 0 {
		return ts[0]
	}
	return ""
}

// collectResponseRefs walks every response content schema and returns the
// sorted set of referenced component schema names
func collectResponseRefs(responses *openapi3.Responses) []string {
	found := make(map[string]bool)
	if responses != nil {
		for _, ref := range responses.Map() {
			if ref == nil || ref.Value == nil {
				continue
			}
			for _, media := range ref.Value.Content {
				if media != nil && media.Schema != nil {
					walkSchemaRefs(media.Schema, make(map[*openapi3.SchemaRef]bool), found)
				}
			}
		}
	}

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func walkSchemaRefs(ref *openapi3.SchemaRef, seen map[*openapi3.SchemaRef]bool, found map[string]bool) {
	if ref == nil || seen[ref] {
		return
	}
	seen[ref] = true

	if m := refPattern.FindStringSubmatch(ref.Ref); m != nil {
		found[m[1]] = true
	}

	s := ref.Value
	if s == nil {
		return
	}
	for _, prop := range s.Properties {
		walkSchemaRefs(prop, seen, found)
	}
	walkSchemaRefs(s.Items, seen, found)
	walkSchemaRefs(s.Not, seen, found)
	walkSchemaRefs(s.AdditionalProperties.Schema, seen, found)
	for _, sub := range s.AllOf {
		walkSchemaRefs(sub, seen, found)
	}
	for _, sub := range s.AnyOf {
		walkSchemaRefs(sub, seen, found)
	}
	for _, sub := range s.OneOf {
		walkSchemaRefs(sub, seen, found)
	}
}

// extractExamples returns every declared response example in status order,
// plus the single example of the preferred status for the record's top-level
// example field
func extractExamples(responses *openapi3.Responses) ([]types.ResponseExample, interface{}) {
	if responses == nil {
		return nil, nil
	}
	m := responses.Map()

	var all []types.ResponseExample
	byStatus := make(map[string]interface{})
	for _, status := range sortedStatuses(m) {
		ref := m[status]
		if ref == nil || ref.Value == nil {
			continue
		}
		ex := pickMediaExample(ref.Value.Content)
		if ex == nil {
			continue
		}
		byStatus[status] = ex
		all = append(all, types.ResponseExample{
			Status:      status,
			Description: responseDescription(ref.Value),
			Example:     ex,
		})
	}

	if len(all) == 0 {
		return nil, nil
	}
	for _, status := range preferredStatuses {
		if ex, ok := byStatus[status]; ok {
			return all, ex
		}
	}
	return all, all[0].Example
}

// preferredResponse picks the response used for example synthesis
func preferredResponse(responses *openapi3.Responses) (string, *openapi3.Response) {
	if responses == nil {
		return "", nil
	}
	m := responses.Map()
	for _, status := range preferredStatuses {
		if ref, ok := m[status]; ok && ref != nil && ref.Value != nil {
			return status, ref.Value
		}
	}
	for _, status := range sortedStatuses(m) {
		if ref := m[status]; ref != nil && ref.Value != nil {
			return status, ref.Value
		}
	}
	return "", nil
}

// pickMediaExample returns the literal example of the preferred media type.
// An explicit example wins over the first entry of the examples map.
func pickMediaExample(content openapi3.Content) interface{} {
	media := preferredMedia(content)
	if media == nil {
		return nil
	}
	if media.Example != nil {
		return media.Example
	}
	for _, key := range sortedKeys(media.Examples) {
		ref := media.Examples[key]
		if ref != nil && ref.Value != nil && ref.Value.Value != nil {
			return ref.Value.Value
		}
	}
	return nil
}

// mediaSchema returns the schema of the preferred media type, or nil
func mediaSchema(content openapi3.Content) *openapi3.SchemaRef {
	media := preferredMedia(content)
	if media == nil {
		return nil
	}
	return media.Schema
}

// preferredMedia prefers JSON content, then falls back to the first declared
// media type
func preferredMedia(content openapi3.Content) *openapi3.MediaType {
	if len(content) == 0 {
		return nil
	}
	for _, key := range []string{"application/json", "application/*+json"} {
		if media, ok := content[key]; ok && media != nil {
			return media
		}
	}
	for _, key := range sortedKeys(content) {
		if media := content[key]; media != nil {
			return media
		}
	}
	return nil
}

func responseDescription(resp *openapi3.Response) string {
	if resp.Description != nil {
		return *resp.Description
	}
	return ""
}

// sortedStatuses orders status codes numerically, with "default" and any
// non-numeric statuses last
func sortedStatuses(m map[string]*openapi3.ResponseRef) []string {
	statuses := make([]string, 0, len(m))
	for status := range m {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool {
		a, aerr := strconv.Atoi(statuses[i])
		b, berr := strconv.Atoi(statuses[j])
		if aerr == nil && berr == nil {
			return a < b
		}
		if aerr == nil {
			return true
		}
		if berr == nil {
			return false
		}
		return statuses[i] < statuses[j]
	})
	return statuses
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
