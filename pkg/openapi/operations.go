package openapi

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/regexcache"
)

// MappedOperation is one method+path pair of a document with its
// references already resolved.
type MappedOperation struct {
	Method      string // upper case
	Path        string // path template, e.g. /users/{id}
	OperationID string
	Operation   *Operation

	// RequestBody is the resolved JSON request body schema, nil when the
	// operation takes no JSON body.
	RequestBody *Schema

	// QueryParams holds the resolved query parameters in declaration
	// order, path-level parameters merged in.
	QueryParams []Parameter
}

// PathRef returns the METHOD::/path form used by operation targeting.
func (m *MappedOperation) PathRef() string {
	return m.Method + "::" + m.Path
}

// methodOrder fixes the order operations of one path are listed in.
var methodOrder = []string{"GET", "PUT", "POST", "DELETE", "OPTIONS", "HEAD", "PATCH"}

// MappedOperations lists every operation of doc, sorted by path and then
// by method, with parameters and request bodies resolved.
func (p *Parser) MappedOperations(doc *Document) []*MappedOperation {
	var ops []*MappedOperation
	for _, path := range slices.Sorted(maps.Keys(doc.Paths)) {
		item := doc.Paths[path]
		for _, method := range methodOrder {
			op := item.operation(method)
			if op == nil {
				continue
			}
			ops = append(ops, p.mapOperation(doc, path, method, item.Parameters, op))
		}
	}
	return ops
}

func (item PathItem) operation(method string) *Operation {
	switch method {
	case "GET":
		return item.Get
	case "PUT":
		return item.Put
	case "POST":
		return item.Post
	case "DELETE":
		return item.Delete
	case "OPTIONS":
		return item.Options
	case "HEAD":
		return item.Head
	case "PATCH":
		return item.Patch
	}
	return nil
}

func (p *Parser) mapOperation(doc *Document, path, method string, pathParams []Parameter, op *Operation) *MappedOperation {
	mapped := &MappedOperation{
		Method:      method,
		Path:        path,
		OperationID: op.OperationID,
		Operation:   op,
	}

	for _, param := range mergeParameters(p.resolveAll(doc, pathParams), p.resolveAll(doc, op.Parameters)) {
		if param.In == "query" {
			mapped.QueryParams = append(mapped.QueryParams, param)
		}
	}

	if body := p.ResolveRequestBody(doc, op.RequestBody); body != nil {
		if media, ok := jsonMediaType(body.Content); ok {
			mapped.RequestBody = p.ResolveSchema(doc, media.Schema)
		}
	}
	return mapped
}

func (p *Parser) resolveAll(doc *Document, params []Parameter) []Parameter {
	out := make([]Parameter, 0, len(params))
	for _, param := range params {
		if resolved, ok := p.ResolveParameter(doc, param); ok {
			out = append(out, resolved)
		}
	}
	return out
}

// mergeParameters merges path-level and operation-level parameters.
// Operation params override path params with the same name+in.
func mergeParameters(pathParams, opParams []Parameter) []Parameter {
	if len(pathParams) == 0 {
		return opParams
	}

	opSet := make(map[string]bool, len(opParams))
	for _, p := range opParams {
		opSet[p.In+":"+p.Name] = true
	}

	merged := slices.Clone(opParams)
	for _, p := range pathParams {
		if !opSet[p.In+":"+p.Name] {
			merged = append(merged, p)
		}
	}
	return merged
}

// jsonMediaType picks application/json, falling back to the first JSON
// flavoured media type (application/problem+json, "application/json;
// charset=utf-8") in sorted order.
func jsonMediaType(content map[string]MediaType) (MediaType, bool) {
	if media, ok := content[defaults.ContentTypeJSON]; ok {
		return media, true
	}
	for _, name := range slices.Sorted(maps.Keys(content)) {
		if strings.Contains(strings.ToLower(name), "json") {
			return content[name], true
		}
	}
	return MediaType{}, false
}

// MatchesTarget reports whether a METHOD::/path pattern selects the
// operation. "*" in either half matches any run of characters; the method
// half is case-insensitive.
func (m *MappedOperation) MatchesTarget(pattern string) bool {
	method, path, ok := strings.Cut(pattern, "::")
	if !ok {
		return false
	}
	if !wildcardRegexp(strings.ToUpper(method)).MatchString(m.Method) {
		return false
	}
	return wildcardRegexp(path).MatchString(m.Path)
}

func wildcardRegexp(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexcache.MustGet("^" + strings.Join(parts, ".*") + "$")
}
