package suite

import (
	"errors"
	"fmt"

	"github.com/waftester/schemafuzz/pkg/openapi"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/variation"
)

// ErrNoOperations is returned when the OpenAPI document declares no
// operation at all.
var ErrNoOperations = errors.New("suite: document has no operations")

// Inputs are the three documents a run needs.
type Inputs struct {
	Document   *openapi.Document
	BaseURL    string
	Operations []*openapi.MappedOperation
	Collection *postman.Collection
	Tests      *variation.File
}

// Sources names the input files.
type Sources struct {
	Spec       string
	Collection string
	Variations string
	Lookup     func(string) (string, bool) // ${VAR} expansion in the variation file
}

// Load reads and parses every input. Errors name the file that failed.
func Load(src Sources) (*Inputs, error) {
	parser := openapi.NewParser()
	doc, err := parser.ParseFile(src.Spec)
	if err != nil {
		return nil, fmt.Errorf("suite: %s: %w", src.Spec, err)
	}
	in := &Inputs{
		Document:   doc,
		BaseURL:    parser.GetBaseURL(doc),
		Operations: parser.MappedOperations(doc),
	}
	if len(in.Operations) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoOperations, src.Spec)
	}

	in.Collection, err = postman.ParseFile(src.Collection)
	if err != nil {
		return nil, fmt.Errorf("suite: %s: %w", src.Collection, err)
	}

	if src.Variations != "" {
		in.Tests, err = variation.LoadFile(src.Variations, variation.LoadOptions{Lookup: src.Lookup})
		if err != nil {
			return nil, fmt.Errorf("suite: %w", err)
		}
	}
	return in, nil
}
