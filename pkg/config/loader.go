package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Common errors for scenario loading.
var (
	ErrFileNotFound     = errors.New("scenario file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("scenario file is empty")
	ErrSchemaViolation  = errors.New("scenario does not match schema")
	ErrUnknownProfile   = errors.New("unknown profile")
)

// Format is a document encoding.
type Format string

// Supported formats. FormatAuto treats input starting with '{' as JSON and
// anything else as YAML.
const (
	FormatAuto Format = ""
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

func detectFormat(data []byte) Format {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes and schema-checks a document.
func Parse(data []byte, format Format) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	if format == FormatAuto {
		format = detectFormat(data)
	}

	generic, err := toJSONValue(data, format)
	if err != nil {
		return nil, err
	}
	if err := validateValue(generic); err != nil {
		return nil, err
	}

	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
	}
	return &doc, nil
}

// Validate reports whether data is a well-formed document, without decoding it.
func Validate(data []byte, format Format) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyFile
	}
	if format == FormatAuto {
		format = detectFormat(data)
	}
	generic, err := toJSONValue(data, format)
	if err != nil {
		return err
	}
	return validateValue(generic)
}

// toJSONValue decodes data into the plain value tree the schema validator
// expects. YAML is routed through JSON so numbers and maps get JSON types.
func toJSONValue(data []byte, format Format) (any, error) {
	if format == FormatYAML {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
		converted, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
		data = converted
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after document", ErrInvalidJSON)
	}
	return v, nil
}

// LoadFile reads a document from path. The format follows the extension
// (.yaml, .yml, .json) and is sniffed otherwise.
func LoadFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	doc, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadGlob loads every file matching pattern, which may use ** to cross
// directories, and concatenates their rules in lexical path order. The first
// non-empty name and the first seed win.
func LoadGlob(pattern string) (*Document, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no files match %s", ErrFileNotFound, pattern)
	}
	slices.Sort(matches)
	return loadFiles(matches)
}

// LoadPaths loads each argument as a file, or as a glob when it contains a
// glob metacharacter, and merges the results in argument order.
func LoadPaths(paths ...string) (*Document, error) {
	files, err := ExpandPaths(paths...)
	if err != nil {
		return nil, err
	}
	return loadFiles(files)
}

func loadFiles(files []string) (*Document, error) {
	docs := make([]*Document, 0, len(files))
	for _, path := range files {
		doc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return Merge(docs...), nil
}

// ExpandPaths resolves glob arguments to the files they match, sorted per
// pattern. Plain paths are returned as given.
func ExpandPaths(paths ...string) ([]string, error) {
	var files []string
	for _, p := range paths {
		if !strings.ContainsAny(p, "*?[{") {
			files = append(files, p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding glob pattern: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: no files match %s", ErrFileNotFound, p)
		}
		slices.Sort(matches)
		files = append(files, matches...)
	}
	return files, nil
}

// Merge concatenates the rules of docs. The first non-empty name and the
// first seed are kept.
func Merge(docs ...*Document) *Document {
	out := &Document{}
	for _, d := range docs {
		if d == nil {
			continue
		}
		if out.Name == "" {
			out.Name = d.Name
		}
		if out.Seed == nil && d.Seed != nil {
			seed := *d.Seed
			out.Seed = &seed
		}
		out.Rules = append(out.Rules, d.Rules...)
	}
	return out
}
