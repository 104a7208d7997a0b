package variation

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/waftester/schemafuzz/pkg/iohelper"
	"github.com/waftester/schemafuzz/pkg/jsonutil"
	"gopkg.in/yaml.v3"
)

// File is a variation test file.
type File struct {
	VariationTests []Test `json:"variationTests" yaml:"variationTests"`
}

// LoadOptions control how a file is read.
type LoadOptions struct {
	// Lookup resolves ${NAME} references before decoding. References it
	// cannot resolve are kept verbatim. Nil disables expansion.
	Lookup func(name string) (string, bool)
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand replaces ${NAME} references using lookup. Postman placeholders
// such as {{$randomInt}} are never touched.
func Expand(data []byte, lookup func(string) (string, bool)) []byte {
	if lookup == nil {
		return data
	}
	return envRef.ReplaceAllFunc(data, func(m []byte) []byte {
		name := string(envRef.FindSubmatch(m)[1])
		if v, ok := lookup(name); ok {
			return []byte(v)
		}
		return m
	})
}

// Load decodes a variation file from r. YAML is chosen by the .yaml or
// .yml extension of filename; anything else is read as JSON with
// comments.
func Load(r io.Reader, filename string, opts LoadOptions) (*File, error) {
	data, err := iohelper.ReadAll(r, iohelper.DocumentMaxSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	data = Expand(data, opts.Lookup)

	var f File
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, filename, err)
		}
	default:
		if err := jsonutil.UnmarshalJSONC(data, &f); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, filename, err)
		}
	}

	f.normalize()
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &f, nil
}

// LoadFile reads and decodes the variation file at path.
func LoadFile(path string, opts LoadOptions) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Load(fh, path, opts)
}

// normalize marks instructions that set neither remove nor overwrite
// as overwrites.
func (f *File) normalize() {
	for ti := range f.VariationTests {
		for vi := range f.VariationTests[ti].Variations {
			v := &f.VariationTests[ti].Variations[vi]
			for gi := range v.Overwrites {
				g := &v.Overwrites[gi]
				for ii := range g.Instructions {
					ins := &g.Instructions[ii]
					if !ins.Remove && !ins.Overwrite {
						ins.Overwrite = true
					}
				}
			}
		}
	}
}

// Validate checks that every test names a target and every variation
// is well formed.
func (f *File) Validate() error {
	for ti, t := range f.VariationTests {
		if t.OpenAPIOperation == "" && t.OpenAPIOperationID == "" && len(t.OpenAPIOperationIDs) == 0 {
			return fmt.Errorf("%w: variationTests[%d] has no openApiOperation, openApiOperationId or openApiOperationIds",
				ErrInvalidConfig, ti)
		}
		for vi, v := range t.Variations {
			if v.Name == "" {
				return fmt.Errorf("%w: variationTests[%d].variations[%d] has no name", ErrInvalidConfig, ti, vi)
			}
			seen := make(map[Kind]bool, len(v.Overwrites))
			for _, g := range v.Overwrites {
				if seen[g.Kind] {
					return fmt.Errorf("%w: variation %q repeats %s", ErrInvalidConfig, v.Name, g.Kind.Key())
				}
				seen[g.Kind] = true
				for _, ins := range g.Instructions {
					if err := ins.Validate(); err != nil {
						return fmt.Errorf("variation %q: %w", v.Name, err)
					}
				}
			}
		}
	}
	return nil
}

// Matching returns the tests accepted by match, in file order.
func (f *File) Matching(match func(*Test) bool) []*Test {
	var out []*Test
	for i := range f.VariationTests {
		if match(&f.VariationTests[i]) {
			out = append(out, &f.VariationTests[i])
		}
	}
	return out
}
