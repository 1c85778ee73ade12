package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hutch/internal/sandbox"
)

// The file builtins are each pre-bound to one agent's sandbox root at
// registry build time. They never accept or report absolute paths:
// candidates go through sandbox.Resolve, results echo the relative
// path the model supplied.

type FileReader struct {
	root string
}

func NewFileReader(root string) *FileReader { return &FileReader{root: root} }

func (f *FileReader) Name() string        { return "file_reader" }
func (f *FileReader) Description() string { return "Read a file from the agent workspace" }

func (f *FileReader) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "File path relative to the workspace root",
			},
		},
		"required":             []string{"path"},
		"additionalProperties": false,
	}
}

func (f *FileReader) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("parsing file_reader input: %w", err)
	}

	abs, err := sandbox.Resolve(f.root, args.Path)
	if err != nil {
		return "", err
	}

	slog.Debug("file_reader: reading", "path", args.Path)
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args.Path, err)
	}
	return truncate(data), nil
}

type FileWriter struct {
	root string
}

func NewFileWriter(root string) *FileWriter { return &FileWriter{root: root} }

func (f *FileWriter) Name() string        { return "file_writer" }
func (f *FileWriter) Description() string { return "Write a file in the agent workspace" }

func (f *FileWriter) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "File path relative to the workspace root",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Content to write",
			},
		},
		"required":             []string{"path", "content"},
		"additionalProperties": false,
	}
}

func (f *FileWriter) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("parsing file_writer input: %w", err)
	}

	abs, err := sandbox.Resolve(f.root, args.Path)
	if err != nil {
		return "", err
	}

	slog.Debug("file_writer: writing", "path", args.Path, "bytes", len(args.Content))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("creating parent dirs for %s: %w", args.Path, err)
	}
	if err := os.WriteFile(abs, []byte(args.Content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", args.Path, err)
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(args.Content), args.Path), nil
}

type FileList struct {
	root string
}

func NewFileList(root string) *FileList { return &FileList{root: root} }

func (f *FileList) Name() string        { return "file_list" }
func (f *FileList) Description() string { return "List a directory in the agent workspace" }

func (f *FileList) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Directory path relative to the workspace root; \".\" for the root",
			},
		},
		"required":             []string{"path"},
		"additionalProperties": false,
	}
}

func (f *FileList) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("parsing file_list input: %w", err)
	}

	abs, err := sandbox.Resolve(f.root, args.Path)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", args.Path, err)
	}
	if len(entries) == 0 {
		return "(empty)", nil
	}

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Name())
		if e.IsDir() {
			b.WriteString("/")
		}
		b.WriteString("\n")
	}
	return truncate([]byte(b.String())), nil
}
