package fuzzer

import (
	"maps"
	"slices"
	"strings"

	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/openapi"
)

// AnalyzeBody catalogues a request body schema. A nil schema yields an
// empty body catalogue.
//
// The walk is depth-first. Object properties are visited in sorted key
// order, array items are addressed as element 0 and allOf members are
// merged at the path of the schema holding them. Only the root required
// list is catalogued.
func AnalyzeBody(schema *openapi.Schema) Catalogue {
	cat := Catalogue{target: BodyTarget{}}
	if schema == nil {
		return cat
	}
	cat.addRequired(schema.Required...)
	for _, member := range schema.AllOf {
		if member != nil {
			cat.addRequired(member.Required...)
		}
	}

	w := walker{cat: &cat}
	w.properties(schema, nil, 0)
	return cat
}

// AnalyzeQueryParam catalogues a single query parameter. A parameter
// without name or schema yields an empty query catalogue.
func AnalyzeQueryParam(param *openapi.Parameter) Catalogue {
	cat := Catalogue{target: QueryTarget{}}
	if param == nil || param.Name == "" || param.Schema == nil {
		return cat
	}
	if param.Required {
		cat.addRequired(param.Name)
	}
	cat.addBounds(param.Schema, param.Name, param.Name)
	return cat
}

type walker struct {
	cat *Catalogue
}

// properties visits the children of s, including the children of its
// allOf members.
func (w walker) properties(s *openapi.Schema, path []string, depth int) {
	if s == nil || depth > defaults.MaxSchemaDepth {
		return
	}
	for _, key := range slices.Sorted(maps.Keys(s.Properties)) {
		w.node(s.Properties[key], append(slices.Clip(path), key), key, depth+1)
	}
	for _, member := range s.AllOf {
		w.properties(member, path, depth+1)
	}
}

func (w walker) node(s *openapi.Schema, path []string, field string, depth int) {
	if s == nil || depth > defaults.MaxSchemaDepth {
		return
	}
	joined := strings.Join(path, ".")
	w.cat.addBounds(s, joined, field)
	for _, member := range s.AllOf {
		if member != nil {
			w.cat.addBounds(member, joined, field)
		}
	}

	w.properties(s, path, depth)
	if s.Items != nil {
		w.node(s.Items, append(slices.Clip(path), "0"), field, depth+1)
	}
}
