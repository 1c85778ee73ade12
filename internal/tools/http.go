package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hutch/internal/secrets"
)

const maxResponseBytes = 100 * 1024

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// HTTPConfig describes a synthesized HTTP tool: a fixed URL template
// whose {placeholder} segments are filled from call arguments, with
// header values resolved through the secret store at call time.
type HTTPConfig struct {
	Name        string
	Description string
	URL         string
	Method      string
	Headers     map[string]string // header name -> secret reference
	Timeout     time.Duration
}

type HTTP struct {
	name         string
	description  string
	urlTemplate  string
	method       string
	headers      map[string]string
	placeholders []string
	store        *secrets.Store
	client       *http.Client
}

func NewHTTP(cfg HTTPConfig, store *secrets.Store) *HTTP {
	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	seen := make(map[string]bool)
	var placeholders []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(cfg.URL, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			placeholders = append(placeholders, m[1])
		}
	}
	sort.Strings(placeholders)

	return &HTTP{
		name:         cfg.Name,
		description:  cfg.Description,
		urlTemplate:  cfg.URL,
		method:       method,
		headers:      cfg.Headers,
		placeholders: placeholders,
		store:        store,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

func (h *HTTP) Name() string        { return h.name }
func (h *HTTP) Description() string { return h.description }

// InputSchema derives the argument shape from the URL template: one
// required string per placeholder.
func (h *HTTP) InputSchema() map[string]any {
	props := make(map[string]any, len(h.placeholders))
	required := make([]string, 0, len(h.placeholders))
	for _, name := range h.placeholders {
		props[name] = map[string]any{
			"type":        "string",
			"description": fmt.Sprintf("Value for the {%s} segment of the request URL", name),
		}
		required = append(required, name)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func (h *HTTP) Execute(ctx context.Context, input string) (string, error) {
	var args map[string]string
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("parsing %s input: %w", h.name, err)
	}

	target := h.urlTemplate
	for _, name := range h.placeholders {
		value, ok := args[name]
		if !ok || value == "" {
			return "", fmt.Errorf("%s: missing argument %q", h.name, name)
		}
		target = strings.ReplaceAll(target, "{"+name+"}", url.PathEscape(value))
	}

	req, err := http.NewRequestWithContext(ctx, h.method, target, nil)
	if err != nil {
		return "", fmt.Errorf("%s: building request: %w", h.name, err)
	}
	for header, ref := range h.headers {
		value, err := h.store.Get(ref)
		if err != nil {
			return "", fmt.Errorf("%s: resolving header %s: %w", h.name, header, err)
		}
		req.Header.Set(header, value)
	}

	slog.Debug("http tool: request", "tool", h.name, "method", h.method, "url", target)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: request failed: %w", h.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%s: HTTP %d %s", h.name, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%s: reading response: %w", h.name, err)
	}

	slog.Debug("http tool: done", "tool", h.name, "status", resp.StatusCode, "bytes", len(body))
	return truncate(body), nil
}
