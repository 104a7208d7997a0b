// Package postman reads and writes Postman v2.x collections and exposes
// each request item as an Operation that can be cloned and rewritten
// without touching the original.
package postman

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/natefinch/atomic"
	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/iohelper"
	"github.com/waftester/schemafuzz/pkg/jsonutil"
)

// Collection is a Postman v2.0/v2.1 collection. Members this package does
// not model (auth, events, protocol profile) are carried through Extra
// unchanged.
type Collection struct {
	Info     Info           `json:"info"`
	Item     []*Item        `json:"item"`
	Variable []Variable     `json:"variable,omitempty"`
	Extra    jsontext.Value `json:",unknown"`
}

// Info is the collection header.
type Info struct {
	PostmanID string         `json:"_postman_id,omitempty"`
	Name      string         `json:"name"`
	Schema    string         `json:"schema"`
	Extra     jsontext.Value `json:",unknown"`
}

// Item is either a folder (Item set) or a request (Request set).
type Item struct {
	ID      string         `json:"id,omitempty"`
	Name    string         `json:"name"`
	Item    []*Item        `json:"item,omitempty"`
	Request *Request       `json:"request,omitempty"`
	Extra   jsontext.Value `json:",unknown"`
}

// IsFolder reports whether the item groups other items.
func (it *Item) IsFolder() bool {
	return it.Request == nil && it.Item != nil
}

// Request is the request definition of an item.
type Request struct {
	Method string         `json:"method"`
	Header []KeyValue     `json:"header,omitempty"`
	Body   *Body          `json:"body,omitempty"`
	URL    URL            `json:"url"`
	Extra  jsontext.Value `json:",unknown"`
}

// Body is a request body. Only raw bodies take part in variation
// generation.
type Body struct {
	Mode  string         `json:"mode"`
	Raw   string         `json:"raw,omitempty"`
	Extra jsontext.Value `json:",unknown"`
}

// KeyValue is a header entry.
type KeyValue struct {
	Key      string         `json:"key"`
	Value    string         `json:"value"`
	Disabled bool           `json:"disabled,omitzero"`
	Extra    jsontext.Value `json:",unknown"`
}

// QueryParam is one entry of a request URL's query list.
type QueryParam struct {
	Key      string         `json:"key"`
	Value    string         `json:"value"`
	Disabled bool           `json:"disabled,omitzero"`
	Extra    jsontext.Value `json:",unknown"`
}

// Variable is a collection variable.
type Variable struct {
	Key   string         `json:"key"`
	Value string         `json:"value"`
	Extra jsontext.Value `json:",unknown"`
}

// Parse decodes a collection.
func Parse(data []byte) (*Collection, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidCollection)
	}
	var coll Collection
	if err := jsonutil.Unmarshal(data, &coll); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCollection, err)
	}
	if coll.Info.Schema != "" && !strings.Contains(coll.Info.Schema, "/v2.") {
		return nil, fmt.Errorf("%w: unsupported schema %s", ErrInvalidCollection, coll.Info.Schema)
	}
	return &coll, nil
}

// ParseFile reads and decodes a collection file.
func ParseFile(path string) (*Collection, error) {
	data, err := iohelper.ReadFile(path, iohelper.DocumentMaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the collection with two-space indentation.
func (c *Collection) Marshal() ([]byte, error) {
	return jsonutil.MarshalIndent(c, "", "  ")
}

// WriteFile atomically replaces path with the encoded collection.
func (c *Collection) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write collection %s: %w", path, err)
	}
	// atomic.WriteFile doesn't set permissions for new files
	return os.Chmod(path, defaults.FilePermission)
}

// AppendToFolder appends items to the top-level folder called name,
// creating the folder at the end of the collection when it is missing.
func (c *Collection) AppendToFolder(name string, items ...*Item) {
	for _, it := range c.Item {
		if it.Name == name && it.Request == nil {
			it.Item = append(it.Item, items...)
			return
		}
	}
	c.Item = append(c.Item, &Item{Name: name, Item: append([]*Item{}, items...)})
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	out := &Collection{
		Info:     c.Info,
		Item:     cloneItems(c.Item),
		Variable: make([]Variable, len(c.Variable)),
		Extra:    c.Extra.Clone(),
	}
	out.Info.Extra = c.Info.Extra.Clone()
	for i, v := range c.Variable {
		v.Extra = v.Extra.Clone()
		out.Variable[i] = v
	}
	if c.Variable == nil {
		out.Variable = nil
	}
	return out
}

// SetVariable sets a collection variable, adding it when missing.
func (c *Collection) SetVariable(key, value string) {
	for i := range c.Variable {
		if c.Variable[i].Key == key {
			c.Variable[i].Value = value
			return
		}
	}
	c.Variable = append(c.Variable, Variable{Key: key, Value: value})
}

func cloneItems(items []*Item) []*Item {
	if items == nil {
		return nil
	}
	out := make([]*Item, len(items))
	for i, it := range items {
		out[i] = it.clone()
	}
	return out
}

func (it *Item) clone() *Item {
	if it == nil {
		return nil
	}
	return &Item{
		ID:      it.ID,
		Name:    it.Name,
		Item:    cloneItems(it.Item),
		Request: it.Request.clone(),
		Extra:   it.Extra.Clone(),
	}
}

func (r *Request) clone() *Request {
	if r == nil {
		return nil
	}
	out := &Request{
		Method: r.Method,
		URL:    r.URL.clone(),
		Extra:  r.Extra.Clone(),
	}
	if r.Header != nil {
		out.Header = make([]KeyValue, len(r.Header))
		for i, h := range r.Header {
			h.Extra = h.Extra.Clone()
			out.Header[i] = h
		}
	}
	if r.Body != nil {
		body := *r.Body
		body.Extra = r.Body.Extra.Clone()
		out.Body = &body
	}
	return out
}
