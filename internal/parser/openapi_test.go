package parser

import (
	"testing"
)

const minimalSpec = `
openapi: 3.0.0
info:
  title: Test API
  version: "1.0"
paths:
  /zebras:
    get:
      responses:
        "200":
          description: OK
  /items:
    get:
      responses:
        "200":
          description: OK
  /alpha:
    post:
      responses:
        "201":
          description: Created
`

func TestLoad(t *testing.T) {
	doc, err := Load("current", []byte(minimalSpec))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Name != "current" {
		t.Errorf("Name = %q, want %q", doc.Name, "current")
	}

	want := []string{"/zebras", "/items", "/alpha"}
	if len(doc.PathOrder) != len(want) {
		t.Fatalf("PathOrder = %v, want %v", doc.PathOrder, want)
	}
	for i, path := range want {
		if doc.PathOrder[i] != path {
			t.Errorf("PathOrder[%d] = %q, want %q", i, doc.PathOrder[i], path)
		}
	}

	if doc.Doc.Paths.Value("/items") == nil {
		t.Error("parsed document is missing /items")
	}
}

func TestLoadEmptyPaths(t *testing.T) {
	spec := `
openapi: 3.0.0
info:
  title: Idle API
  version: "1.0"
paths: {}
`
	doc, err := Load("current", []byte(spec))
	if err != nil {
		t.Fatalf("Load() error = %v, want an empty document", err)
	}
	if len(doc.PathOrder) != 0 {
		t.Errorf("PathOrder = %v, want empty", doc.PathOrder)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "invalid yaml",
			data: "openapi: [unclosed",
		},
		{
			name: "no paths",
			data: "openapi: 3.0.0\ninfo:\n  title: Empty\n  version: \"1.0\"\n",
		},
		{
			name: "not a document",
			data: "- just\n- a\n- list\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load("bad", []byte(tt.data)); err == nil {
				t.Error("Load() expected an error, got nil")
			}
		})
	}
}
