package types

// ParamDescriptor describes a single declared parameter of an operation
type ParamDescriptor struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Type     string `json:"type"`
}

// ResponseExample holds one literal example payload declared for a response status
type ResponseExample struct {
	Status      string      `json:"status"`
	Description string      `json:"description"`
	Example     interface{} `json:"example"`
}

// EndpointRecord is one normalized row describing a single (path, method) operation.
// Records from the current and the legacy document live in independent namespaces,
// so the same path and method may appear twice with different Source values.
type EndpointRecord struct {
	ID               string            `json:"id"`
	Source           string            `json:"source"`
	Path             string            `json:"path"`
	Method           string            `json:"method"`
	Summary          string            `json:"summary,omitempty"`
	Description      string            `json:"description,omitempty"`
	Tags             []string          `json:"tags"`
	Parameters       []ParamDescriptor `json:"parameters"`
	PathParams       []ParamDescriptor `json:"pathParams,omitempty"`
	HeaderParams     []ParamDescriptor `json:"headerParams,omitempty"`
	ResponseRefs     []string          `json:"responseRefs"`
	Example          interface{}       `json:"example,omitempty"`
	ResponseExamples []ResponseExample `json:"responseExamples,omitempty"`
}

// NodeID returns the identifier used for this record in the graph artifact.
// The source prefix keeps current and legacy records apart when both declare
// the same operation id.
func (r EndpointRecord) NodeID() string {
	return r.Source + ":" + r.ID
}
