package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"api-graph/internal/parser"
	"api-graph/internal/types"
)

func mustLoad(t *testing.T, name, spec string) *parser.Document {
	t.Helper()
	doc, err := parser.Load(name, []byte(spec))
	if err != nil {
		t.Fatalf("failed to load spec: %v", err)
	}
	return doc
}

func TestBuildItemsScenario(t *testing.T) {
	doc := mustLoad(t, "current", `
openapi: 3.0.0
info:
  title: Catalog API
  version: "1.0"
paths:
  /items:
    get:
      tags: [catalog]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Item'
components:
  schemas:
    Item:
      type: object
      properties:
        id:
          type: integer
`)

	records := NewBuilder(false).Build([]*parser.Document{doc})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Path != "/items" || rec.Method != "GET" {
		t.Errorf("got %s %s, want GET /items", rec.Method, rec.Path)
	}
	if !reflect.DeepEqual(rec.Tags, []string{"catalog"}) {
		t.Errorf("Tags = %v, want [catalog]", rec.Tags)
	}
	if len(rec.Parameters) != 0 {
		t.Errorf("Parameters = %v, want empty", rec.Parameters)
	}
	if !reflect.DeepEqual(rec.ResponseRefs, []string{"Item"}) {
		t.Errorf("ResponseRefs = %v, want [Item]", rec.ResponseRefs)
	}
	if rec.Example != nil {
		t.Errorf("Example = %v, want nil", rec.Example)
	}
	if rec.ID != "GET /items" {
		t.Errorf("ID = %q, want %q", rec.ID, "GET /items")
	}
}

func TestBuildSkipsInvalidOperations(t *testing.T) {
	doc := mustLoad(t, "current", `
openapi: 3.0.0
info:
  title: Partial API
  version: "1.0"
paths:
  /broken:
    get:
    post:
      operationId: createBroken
      responses:
        "201":
          description: Created
  /ok:
    get:
      responses:
        "200":
          description: OK
`)

	records := NewBuilder(false).Build([]*parser.Document{doc})
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "createBroken" {
		t.Errorf("records[0].ID = %q, want createBroken", records[0].ID)
	}
	if records[1].Path != "/ok" {
		t.Errorf("records[1].Path = %q, want /ok", records[1].Path)
	}
}

func TestBuildPreservesOrder(t *testing.T) {
	doc := mustLoad(t, "current", `
openapi: 3.0.0
info:
  title: Ordered API
  version: "1.0"
paths:
  /zebras:
    post:
      responses:
        "201":
          description: Created
    get:
      responses:
        "200":
          description: OK
  /alpha:
    get:
      responses:
        "200":
          description: OK
`)

	records := NewBuilder(false).Build([]*parser.Document{doc})
	var got []string
	for _, rec := range records {
		got = append(got, rec.Method+" "+rec.Path)
	}
	// Paths follow declaration order, methods the canonical order.
	want := []string{"GET /zebras", "POST /zebras", "GET /alpha"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestBuildTwoDocuments(t *testing.T) {
	current := mustLoad(t, "current", `
openapi: 3.0.0
info:
  title: Current
  version: "2.0"
paths:
  /status:
    get:
      responses:
        "200":
          description: OK
`)
	legacy := mustLoad(t, "legacy", `
openapi: 3.0.0
info:
  title: Legacy
  version: "1.0"
paths:
  /status:
    get:
      responses:
        "200":
          description: OK
`)

	records := NewBuilder(false).Build([]*parser.Document{current, legacy})
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// The two documents are independent namespaces: the duplicate
	// (path, method) pair survives, distinguished by source.
	if records[0].Source != "current" || records[1].Source != "legacy" {
		t.Errorf("sources = %q, %q; want current, legacy", records[0].Source, records[1].Source)
	}
	for _, rec := range records {
		if rec.Path != "/status" || rec.Method != "GET" {
			t.Errorf("got %s %s, want GET /status", rec.Method, rec.Path)
		}
	}
}

func TestBuildParameters(t *testing.T) {
	doc := mustLoad(t, "current", `
openapi: 3.0.0
info:
  title: Params API
  version: "1.0"
paths:
  /orders/{orderId}:
    parameters:
      - name: orderId
        in: path
        required: true
        schema:
          type: string
    get:
      parameters:
        - name: limit
          in: query
          required: true
          schema:
            type: integer
        - name: cursor
          in: query
          schema:
            type: string
        - name: X-Trace
          in: header
          schema:
            type: string
      responses:
        "200":
          description: OK
`)

	records := NewBuilder(false).Build([]*parser.Document{doc})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]

	wantQuery := []types.ParamDescriptor{
		{Name: "limit", Required: true, Type: "integer"},
		{Name: "cursor", Required: false, Type: "string"},
	}
	if !reflect.DeepEqual(rec.Parameters, wantQuery) {
		t.Errorf("Parameters = %v, want %v", rec.Parameters, wantQuery)
	}

	wantPath := []types.ParamDescriptor{{Name: "orderId", Required: true, Type: "string"}}
	if !reflect.DeepEqual(rec.PathParams, wantPath) {
		t.Errorf("PathParams = %v, want %v", rec.PathParams, wantPath)
	}

	wantHeader := []types.ParamDescriptor{{Name: "X-Trace", Required: false, Type: "string"}}
	if !reflect.DeepEqual(rec.HeaderParams, wantHeader) {
		t.Errorf("HeaderParams = %v, want %v", rec.HeaderParams, wantHeader)
	}
}

func TestBuildNestedResponseRefs(t *testing.T) {
	doc := mustLoad(t, "current", `
openapi: 3.0.0
info:
  title: Nested API
  version: "1.0"
paths:
  /pages:
    get:
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                type: object
                properties:
                  items:
                    type: array
                    items:
                      $ref: '#/components/schemas/Page'
                  next:
                    type: string
        "404":
          description: Not found
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Error'
components:
  schemas:
    Page:
      type: object
      properties:
        title:
          type: string
    Error:
      type: object
      properties:
        message:
          type: string
`)

	records := NewBuilder(false).Build([]*parser.Document{doc})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	want := []string{"Error", "Page"}
	if !reflect.DeepEqual(records[0].ResponseRefs, want) {
		t.Errorf("ResponseRefs = %v, want %v", records[0].ResponseRefs, want)
	}
}

func TestBuildExamplePreference(t *testing.T) {
	doc := mustLoad(t, "current", `
openapi: 3.0.0
info:
  title: Examples API
  version: "1.0"
paths:
  /things:
    post:
      responses:
        "500":
          description: Boom
          content:
            application/json:
              example:
                error: boom
        "201":
          description: Created
          content:
            application/json:
              example:
                id: 7
        "404":
          description: Missing
          content:
            application/json:
              example:
                error: missing
`)

	records := NewBuilder(false).Build([]*parser.Document{doc})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]

	// 201 wins over the numerically lower 404 and 500.
	example, ok := rec.Example.(map[string]interface{})
	if !ok {
		t.Fatalf("Example = %#v, want a map", rec.Example)
	}
	if _, ok := example["id"]; !ok {
		t.Errorf("Example = %v, want the 201 payload", example)
	}

	if len(rec.ResponseExamples) != 3 {
		t.Fatalf("got %d response examples, want 3", len(rec.ResponseExamples))
	}
	var statuses []string
	for _, ex := range rec.ResponseExamples {
		statuses = append(statuses, ex.Status)
	}
	if !reflect.DeepEqual(statuses, []string{"201", "404", "500"}) {
		t.Errorf("statuses = %v, want [201 404 500]", statuses)
	}
}

func TestWriteDatasetWorldReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.json")
	if err := WriteDataset(path, nil); err != nil {
		t.Fatalf("WriteDataset() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat dataset: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want -rw-r--r--", info.Mode().Perm())
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	doc := mustLoad(t, "current", `
openapi: 3.0.0
info:
  title: Round-trip API
  version: "1.0"
paths:
  /items:
    get:
      tags: [catalog]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Item'
              example:
                id: 1
                name: widget
components:
  schemas:
    Item:
      type: object
`)

	records := NewBuilder(false).Build([]*parser.Document{doc})
	path := filepath.Join(t.TempDir(), "endpoints.json")

	if err := WriteDataset(path, records); err != nil {
		t.Fatalf("WriteDataset() error = %v", err)
	}
	loaded, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	// Compare through JSON so numeric types decoded from YAML and JSON
	// line up.
	wantJSON, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal original: %v", err)
	}
	gotJSON, err := json.Marshal(loaded)
	if err != nil {
		t.Fatalf("marshal loaded: %v", err)
	}
	if string(wantJSON) != string(gotJSON) {
		t.Errorf("round-trip mismatch:\n got %s\nwant %s", gotJSON, wantJSON)
	}
}
