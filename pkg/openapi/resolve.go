package openapi

import (
	"maps"
	"slices"

	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/regexcache"
)

// ResolveRef resolves a $ref reference to its component schema.
// Chained references are followed; circular chains resolve to nil.
func (p *Parser) ResolveRef(doc *Document, ref string) *Schema {
	if ref == "" {
		return nil
	}

	if schema, ok := p.resolvedSchemas[ref]; ok {
		return schema
	}

	// Mark as in-progress before recursing to break circular $ref chains.
	p.resolvedSchemas[ref] = nil

	matches := regexcache.MustGet(`^#/components/schemas/(.+)$`).FindStringSubmatch(ref)
	if len(matches) != 2 || doc.Components == nil {
		return nil
	}
	schema, ok := doc.Components.Schemas[unescapePointer(matches[1])]
	if !ok || schema == nil {
		return nil
	}
	if schema.Ref != "" {
		schema = p.ResolveRef(doc, schema.Ref)
	}
	p.resolvedSchemas[ref] = schema
	return schema
}

// ResolveSchema returns a copy of s with every $ref replaced by the
// referenced schema, recursively. The input tree is never modified.
// A reference that leads back to one of its own ancestors is cut and
// resolves to nil, as does anything nested deeper than
// defaults.MaxSchemaDepth.
func (p *Parser) ResolveSchema(doc *Document, s *Schema) *Schema {
	return p.resolveSchema(doc, s, make(map[string]bool), 0)
}

func (p *Parser) resolveSchema(doc *Document, s *Schema, active map[string]bool, depth int) *Schema {
	if s == nil || depth > defaults.MaxSchemaDepth {
		return nil
	}
	if s.Ref != "" {
		ref := s.Ref
		if active[ref] {
			return nil
		}
		target := p.ResolveRef(doc, ref)
		if target == nil {
			return nil
		}
		active[ref] = true
		defer delete(active, ref)
		return p.resolveSchema(doc, target, active, depth+1)
	}

	out := *s
	out.Type = slices.Clone(s.Type)
	out.Required = slices.Clone(s.Required)
	out.Enum = slices.Clone(s.Enum)
	out.MinLength = cloneBound(s.MinLength)
	out.MaxLength = cloneBound(s.MaxLength)
	out.Minimum = cloneBound(s.Minimum)
	out.Maximum = cloneBound(s.Maximum)

	if s.Properties != nil {
		out.Properties = make(map[string]*Schema, len(s.Properties))
		for _, name := range slices.Sorted(maps.Keys(s.Properties)) {
			if child := p.resolveSchema(doc, s.Properties[name], active, depth+1); child != nil {
				out.Properties[name] = child
			}
		}
	}
	out.Items = p.resolveSchema(doc, s.Items, active, depth+1)
	out.AllOf = p.resolveList(doc, s.AllOf, active, depth+1)
	out.OneOf = p.resolveList(doc, s.OneOf, active, depth+1)
	out.AnyOf = p.resolveList(doc, s.AnyOf, active, depth+1)
	return &out
}

func (p *Parser) resolveList(doc *Document, list []*Schema, active map[string]bool, depth int) []*Schema {
	if len(list) == 0 {
		return nil
	}
	out := make([]*Schema, 0, len(list))
	for _, s := range list {
		if r := p.resolveSchema(doc, s, active, depth); r != nil {
			out = append(out, r)
		}
	}
	return out
}

func cloneBound(b *Bound) *Bound {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// ResolveParameter follows a parameter $ref and resolves the parameter's
// schema. The boolean is false when the reference cannot be followed.
func (p *Parser) ResolveParameter(doc *Document, param Parameter) (Parameter, bool) {
	seen := make(map[string]bool)
	for param.Ref != "" {
		if seen[param.Ref] || doc.Components == nil {
			return Parameter{}, false
		}
		seen[param.Ref] = true

		matches := regexcache.MustGet(`^#/components/parameters/(.+)$`).FindStringSubmatch(param.Ref)
		if len(matches) != 2 {
			return Parameter{}, false
		}
		target, ok := doc.Components.Parameters[unescapePointer(matches[1])]
		if !ok || target == nil {
			return Parameter{}, false
		}
		param = *target
	}
	param.Schema = p.ResolveSchema(doc, param.Schema)
	return param, true
}

// ResolveRequestBody follows a request body $ref. Nil is returned for a
// missing body or a dangling reference.
func (p *Parser) ResolveRequestBody(doc *Document, body *RequestBody) *RequestBody {
	seen := make(map[string]bool)
	for body != nil && body.Ref != "" {
		if seen[body.Ref] || doc.Components == nil {
			return nil
		}
		seen[body.Ref] = true

		matches := regexcache.MustGet(`^#/components/requestBodies/(.+)$`).FindStringSubmatch(body.Ref)
		if len(matches) != 2 {
			return nil
		}
		body = doc.Components.RequestBodies[unescapePointer(matches[1])]
	}
	return body
}

// unescapePointer decodes a JSON pointer token (~1 is "/", ~0 is "~").
func unescapePointer(token string) string {
	out := make([]byte, 0, len(token))
	for i := 0; i < len(token); i++ {
		if token[i] == '~' && i+1 < len(token) {
			switch token[i+1] {
			case '1':
				out = append(out, '/')
				i++
				continue
			case '0':
				out = append(out, '~')
				i++
				continue
			}
		}
		out = append(out, token[i])
	}
	return string(out)
}
