package postman

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/waftester/schemafuzz/pkg/jsonutil"
)

// URL is a request URL. Collections may store it as a plain string or as
// an object; both decode into the object form.
type URL struct {
	Raw      string         `json:"raw,omitempty"`
	Protocol string         `json:"protocol,omitempty"`
	Host     Segments       `json:"host,omitempty"`
	Path     Segments       `json:"path,omitempty"`
	Query    []QueryParam   `json:"query,omitempty"`
	Variable []KeyValue     `json:"variable,omitempty"`
	Extra    jsontext.Value `json:",unknown"`
}

// UnmarshalJSON handles URL being either a plain string or an object.
func (u *URL) UnmarshalJSON(data []byte) error {
	var s string
	if err := jsonutil.Unmarshal(data, &s); err == nil {
		*u = ParseRawURL(s)
		return nil
	}

	type alias URL
	var obj alias
	if err := jsonutil.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unmarshal postman URL: %w", err)
	}
	*u = URL(obj)
	return nil
}

// ParseRawURL splits a raw Postman URL such as
// "{{baseUrl}}/users/:id?limit=10" into host, path and query.
func ParseRawURL(raw string) URL {
	u := URL{Raw: raw}

	rest := raw
	if proto, after, ok := strings.Cut(rest, "://"); ok {
		u.Protocol = proto
		rest = after
	}
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}
	rest, query, hasQuery := strings.Cut(rest, "?")
	if hasQuery {
		u.Query = parseQuery(query)
	}

	host, path, _ := strings.Cut(rest, "/")
	if host != "" {
		u.Host = Segments(strings.Split(host, "."))
	}
	if path != "" {
		u.Path = Segments(strings.Split(path, "/"))
	}
	return u
}

func parseQuery(query string) []QueryParam {
	if query == "" {
		return nil
	}
	var params []QueryParam
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		params = append(params, QueryParam{Key: key, Value: value})
	}
	return params
}

// rebuildRaw regenerates the query part of Raw from Query. Disabled
// parameters are left out, as Postman does.
func (u *URL) rebuildRaw() {
	base, _, _ := strings.Cut(u.Raw, "?")
	var pairs []string
	for _, q := range u.Query {
		if q.Disabled {
			continue
		}
		pairs = append(pairs, q.Key+"="+q.Value)
	}
	if len(pairs) == 0 {
		u.Raw = base
		return
	}
	u.Raw = base + "?" + strings.Join(pairs, "&")
}

func (u URL) clone() URL {
	out := u
	out.Host = append(Segments(nil), u.Host...)
	out.Path = append(Segments(nil), u.Path...)
	out.Extra = u.Extra.Clone()
	if u.Query != nil {
		out.Query = make([]QueryParam, len(u.Query))
		for i, q := range u.Query {
			q.Extra = q.Extra.Clone()
			out.Query[i] = q
		}
	}
	if u.Variable != nil {
		out.Variable = make([]KeyValue, len(u.Variable))
		for i, v := range u.Variable {
			v.Extra = v.Extra.Clone()
			out.Variable[i] = v
		}
	}
	if len(u.Host) == 0 {
		out.Host = nil
	}
	if len(u.Path) == 0 {
		out.Path = nil
	}
	return out
}

// Segments is a host or path list. Collections may store either as a
// single string, which decodes to one segment.
type Segments []string

// UnmarshalJSON accepts a string or a list of strings.
func (s *Segments) UnmarshalJSON(data []byte) error {
	var one string
	if err := jsonutil.Unmarshal(data, &one); err == nil {
		*s = Segments{one}
		return nil
	}
	var many []string
	if err := jsonutil.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("unmarshal postman segments: %w", err)
	}
	*s = many
	return nil
}
