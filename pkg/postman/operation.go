package postman

import (
	"strings"

	"github.com/waftester/schemafuzz/pkg/regexcache"
)

// Operation is one request item of a collection together with the
// method and path template it targets.
type Operation struct {
	Item   *Item
	Method string // upper case
	Path   string // template form, e.g. /users/{id}
}

// CloneOptions names the copy produced by Clone.
type CloneOptions struct {
	NewID string
	Name  string
}

// Operations flattens the collection's folders depth-first and returns
// every request item in document order.
func Operations(c *Collection) []*Operation {
	var ops []*Operation
	var walk func(items []*Item)
	walk = func(items []*Item) {
		for _, it := range items {
			if it == nil {
				continue
			}
			if it.Request != nil {
				ops = append(ops, NewOperation(it))
				continue
			}
			walk(it.Item)
		}
	}
	walk(c.Item)
	return ops
}

// NewOperation wraps a request item.
func NewOperation(it *Item) *Operation {
	op := &Operation{Item: it}
	if it.Request != nil {
		op.Method = strings.ToUpper(it.Request.Method)
		op.Path = templatePath(it.Request.URL)
	}
	return op
}

// ID returns the item identifier.
func (o *Operation) ID() string { return o.Item.ID }

// Name returns the item name.
func (o *Operation) Name() string { return o.Item.Name }

// Clone returns an independent copy of the operation carrying a new
// identifier and name. Nothing is shared with the receiver.
func (o *Operation) Clone(opts CloneOptions) *Operation {
	it := o.Item.clone()
	it.ID = opts.NewID
	it.Name = opts.Name
	return &Operation{Item: it, Method: o.Method, Path: o.Path}
}

// BodyRaw returns the raw request body. The boolean is false when the
// request has no raw body.
func (o *Operation) BodyRaw() (string, bool) {
	req := o.Item.Request
	if req == nil || req.Body == nil || req.Body.Raw == "" {
		return "", false
	}
	return req.Body.Raw, true
}

// SetBodyRaw replaces the raw request body, creating one when missing.
func (o *Operation) SetBodyRaw(raw string) {
	req := o.Item.Request
	if req == nil {
		return
	}
	if req.Body == nil {
		req.Body = &Body{Mode: "raw"}
	}
	req.Body.Raw = raw
}

// QueryParams returns a copy of the request's query parameters.
func (o *Operation) QueryParams() []QueryParam {
	req := o.Item.Request
	if req == nil {
		return nil
	}
	return req.URL.clone().Query
}

// QueryParam returns the first query parameter called key.
func (o *Operation) QueryParam(key string) (QueryParam, bool) {
	for _, q := range o.QueryParams() {
		if q.Key == key {
			return q, true
		}
	}
	return QueryParam{}, false
}

// SetQueryParams replaces the query list and keeps the raw URL in step.
func (o *Operation) SetQueryParams(params []QueryParam) {
	req := o.Item.Request
	if req == nil {
		return
	}
	req.URL.Query = params
	req.URL.rebuildRaw()
}

// MatchesPath reports whether the operation targets method and the
// OpenAPI path template. Parameter names are ignored and the collection
// path may carry a base path prefix (/v1/users matches /users).
func (o *Operation) MatchesPath(method, template string) bool {
	if !strings.EqualFold(o.Method, method) {
		return false
	}
	have := anonymizeParams(o.Path)
	want := anonymizeParams(template)
	if have == want {
		return true
	}
	return want != "/" && strings.HasSuffix(have, want) && strings.HasPrefix(want, "/")
}

func anonymizeParams(path string) string {
	return regexcache.MustGet(`\{[^/{}]*\}`).ReplaceAllString(strings.TrimSuffix(path, "/"), "{}")
}

// templatePath converts a collection URL path into OpenAPI template form:
// ":id" and "{{id}}" segments both become "{id}".
func templatePath(u URL) string {
	segments := u.Path
	if len(segments) == 0 && u.Raw != "" {
		segments = ParseRawURL(u.Raw).Path
	}

	out := make([]string, 0, len(segments))
	for _, seg := range strings.Split(strings.Join(segments, "/"), "/") {
		switch {
		case seg == "":
			continue
		case strings.HasPrefix(seg, ":"):
			seg = "{" + seg[1:] + "}"
		case strings.HasPrefix(seg, "{{") && strings.HasSuffix(seg, "}}"):
			seg = "{" + seg[2:len(seg)-2] + "}"
		}
		out = append(out, seg)
	}
	return "/" + strings.Join(out, "/")
}
