package probe

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Archive writes successful probe responses to disk, one JSON file per
// endpoint
type Archive struct {
	dir string
}

// NewArchive creates a new response archive rooted at dir
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// savedResponse is the on-disk shape of one archived call
type savedResponse struct {
	Request  savedRequest `json:"request"`
	Response savedPayload `json:"response"`
}

type savedRequest struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	URL    string `json:"url"`
}

type savedPayload struct {
	Status  int                 `json:"status"`
	Headers map[string][]string `json:"headers"`
	JSON    interface{}         `json:"json,omitempty"`
	Text    string              `json:"text,omitempty"`
}

// Save writes one successful response. The body is stored as parsed JSON when
// possible, raw text otherwise.
func (a *Archive) Save(method, path string, resp *http.Response, body []byte) (string, error) {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create responses directory: %v", err)
	}

	payload := savedResponse{
		Request: savedRequest{
			Method: method,
			Path:   path,
			URL:    resp.Request.URL.String(),
		},
		Response: savedPayload{
			Status:  resp.StatusCode,
			Headers: resp.Header,
		},
	}

	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err == nil {
		payload.Response.JSON = parsed
	} else {
		payload.Response.Text = string(body)
	}

	outPath := filepath.Join(a.dir, safeFilename(method, path))
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %v", outPath, err)
	}
	return outPath, nil
}

// safeFilename derives a filesystem-friendly name for an endpoint, for
// example GET /v1/naturezas/{codigoNatureza} -> GET_v1_naturezas_codigoNatureza.json
func safeFilename(method, path string) string {
	name := strings.ToUpper(method) + "_" + strings.Trim(path, "/")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "{", "")
	name = strings.ReplaceAll(name, "}", "")

	var b strings.Builder
	for _, ch := range name {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9',
			ch == '_', ch == '-', ch == '.':
			b.WriteRune(ch)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := b.String()
	for strings.Contains(cleaned, "__") {
		cleaned = strings.ReplaceAll(cleaned, "__", "_")
	}
	return cleaned + ".json"
}
