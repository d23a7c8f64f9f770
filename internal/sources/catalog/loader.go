package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/scholardesk/internal/utils"
)

// maxCatalogBytes bounds remote payloads.
const maxCatalogBytes = 32 << 20

// Loader fetches the catalog document from a URL or a local file.
type Loader struct {
	source string
	client *http.Client
}

// NewLoader creates a loader for source, an http(s) URL or a file path.
// timeout bounds remote fetches; 0 means no client-side timeout.
func NewLoader(source string, timeout time.Duration) *Loader {
	return &Loader{
		source: source,
		client: &http.Client{Timeout: timeout},
	}
}

// Source returns the configured location.
func (l *Loader) Source() string { return l.source }

// IsRemote reports whether the source is fetched over HTTP.
func (l *Loader) IsRemote() bool {
	return strings.HasPrefix(l.source, "http://") || strings.HasPrefix(l.source, "https://")
}

// Load reads and parses the catalog document.
// It fails with *FetchError or *ParseError; no retry is attempted.
func (l *Loader) Load(ctx context.Context) (File, error) {
	var (
		data []byte
		err  error
		yml  bool
	)

	if l.IsRemote() {
		data, yml, err = l.fetch(ctx)
	} else {
		data, err = os.ReadFile(l.source)
		if err != nil {
			err = &FetchError{Source: l.source, Err: err}
		}
		yml = isYAMLPath(l.source)
	}
	if err != nil {
		return nil, err
	}

	return decode(l.source, data, yml)
}

func (l *Loader) fetch(ctx context.Context) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, http.NoBody)
	if err != nil {
		return nil, false, &FetchError{Source: l.source, Err: err}
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, false, &FetchError{Source: l.source, Err: err}
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, &FetchError{Source: l.source, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, false, &FetchError{Source: l.source, Err: err}
	}

	yml := strings.Contains(resp.Header.Get("Content-Type"), "yaml")
	if u, err := url.Parse(l.source); err == nil && isYAMLPath(u.Path) {
		yml = true
	}
	return data, yml, nil
}

func decode(source string, data []byte, yml bool) (File, error) {
	var file File
	if yml {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, &ParseError{Source: source, Err: err}
		}
		return file, nil
	}

	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if file == nil {
		return nil, &ParseError{Source: source, Err: errors.New("document is not an array")}
	}
	return file, nil
}

func isYAMLPath(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// String implements fmt.Stringer for log lines.
func (l *Loader) String() string {
	kind := "file"
	if l.IsRemote() {
		kind = "url"
	}
	return fmt.Sprintf("%s:%s", kind, l.source)
}
