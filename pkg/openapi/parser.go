// Package openapi loads OpenAPI 3.x documents and exposes the typed schema
// tree and the per-operation view the variation generator works from.
package openapi

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/waftester/schemafuzz/pkg/iohelper"
	"github.com/waftester/schemafuzz/pkg/jsonutil"
	"gopkg.in/yaml.v3"
)

// Document represents a parsed OpenAPI document
type Document struct {
	OpenAPI    string              `json:"openapi" yaml:"openapi"`
	Swagger    string              `json:"swagger,omitempty" yaml:"swagger,omitempty"`
	Info       Info                `json:"info" yaml:"info"`
	Servers    []Server            `json:"servers,omitempty" yaml:"servers,omitempty"`
	Paths      map[string]PathItem `json:"paths" yaml:"paths"`
	Components *Components         `json:"components,omitempty" yaml:"components,omitempty"`
}

// Info contains API metadata
type Info struct {
	Title   string `json:"title" yaml:"title"`
	Version string `json:"version" yaml:"version"`
}

// Server represents a server definition
type Server struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PathItem represents all operations for a path
type PathItem struct {
	Get        *Operation  `json:"get,omitempty" yaml:"get,omitempty"`
	Post       *Operation  `json:"post,omitempty" yaml:"post,omitempty"`
	Put        *Operation  `json:"put,omitempty" yaml:"put,omitempty"`
	Delete     *Operation  `json:"delete,omitempty" yaml:"delete,omitempty"`
	Patch      *Operation  `json:"patch,omitempty" yaml:"patch,omitempty"`
	Options    *Operation  `json:"options,omitempty" yaml:"options,omitempty"`
	Head       *Operation  `json:"head,omitempty" yaml:"head,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Operation represents a single API operation
type Operation struct {
	OperationID string       `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Summary     string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags        []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Parameters  []Parameter  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
}

// Parameter represents an operation parameter
type Parameter struct {
	Name     string  `json:"name,omitempty" yaml:"name,omitempty"`
	In       string  `json:"in,omitempty" yaml:"in,omitempty"` // query, path, header, cookie
	Required bool    `json:"required,omitempty" yaml:"required,omitempty"`
	Schema   *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
	Example  any     `json:"example,omitempty" yaml:"example,omitempty"`
	Ref      string  `json:"$ref,omitempty" yaml:"$ref,omitempty"`
}

// RequestBody represents the request body
type RequestBody struct {
	Required bool                 `json:"required,omitempty" yaml:"required,omitempty"`
	Content  map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
	Ref      string               `json:"$ref,omitempty" yaml:"$ref,omitempty"`
}

// MediaType represents a media type definition
type MediaType struct {
	Schema  *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
	Example any     `json:"example,omitempty" yaml:"example,omitempty"`
}

// Schema represents a JSON Schema definition. Only the keywords that
// matter for boundary generation are decoded; everything else is ignored.
type Schema struct {
	Type       SchemaType         `json:"type,omitempty" yaml:"type,omitempty"`
	Format     string             `json:"format,omitempty" yaml:"format,omitempty"`
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty" yaml:"items,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`
	Enum       []any              `json:"enum,omitempty" yaml:"enum,omitempty"`
	Ref        string             `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Example    any                `json:"example,omitempty" yaml:"example,omitempty"`
	MinLength  *Bound             `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength  *Bound             `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Minimum    *Bound             `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum    *Bound             `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Pattern    string             `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Composition keywords.
	AllOf []*Schema `json:"allOf,omitempty" yaml:"allOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty" yaml:"anyOf,omitempty"`

	Nullable bool `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	ReadOnly bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

// Components contains reusable schema components
type Components struct {
	Schemas       map[string]*Schema      `json:"schemas,omitempty" yaml:"schemas,omitempty"`
	Parameters    map[string]*Parameter   `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBodies map[string]*RequestBody `json:"requestBodies,omitempty" yaml:"requestBodies,omitempty"`
}

// Parser parses OpenAPI documents and resolves their references.
type Parser struct {
	// Resolved schemas cache, keyed by $ref. A nil entry marks a ref that
	// is being resolved and breaks circular chains.
	resolvedSchemas map[string]*Schema
}

// NewParser creates a new OpenAPI parser
func NewParser() *Parser {
	return &Parser{
		resolvedSchemas: make(map[string]*Schema),
	}
}

// ParseFile parses an OpenAPI document from a file. The format follows the
// extension; unknown extensions are sniffed.
func (p *Parser) ParseFile(path string) (*Document, error) {
	data, err := iohelper.ReadFile(path, iohelper.DocumentMaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return p.ParseJSON(data)
	case ".yaml", ".yml":
		return p.ParseYAML(data)
	default:
		return p.Parse(data)
	}
}

// Parse detects the format of data and parses it.
func (p *Parser) Parse(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}
	if jsonutil.Valid(trimmed) {
		return p.ParseJSON(trimmed)
	}
	return p.ParseYAML(data)
}

// ParseJSON parses an OpenAPI document from JSON data
func (p *Parser) ParseJSON(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	var doc Document
	if err := jsonutil.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: JSON: %w", ErrInvalidDocument, err)
	}
	return checkVersion(&doc)
}

// ParseYAML parses an OpenAPI document from YAML data
func (p *Parser) ParseYAML(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: YAML: %w", ErrInvalidDocument, err)
	}
	return checkVersion(&doc)
}

func checkVersion(doc *Document) (*Document, error) {
	if doc.Swagger != "" {
		return nil, fmt.Errorf("%w: swagger %s", ErrUnsupportedVersion, doc.Swagger)
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, doc.OpenAPI)
	}
	return doc, nil
}

// GetBaseURL returns the first server URL from the document
func (p *Parser) GetBaseURL(doc *Document) string {
	if len(doc.Servers) > 0 {
		return strings.TrimSuffix(doc.Servers[0].URL, "/")
	}
	return ""
}

// ParseFromFile is a convenience function to parse an OpenAPI document from a file
func ParseFromFile(path string) (*Document, error) {
	return NewParser().ParseFile(path)
}
