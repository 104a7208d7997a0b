// Package writer applies variation configurations to cloned requests and
// collects them into a "Variations" folder of the output collection.
package writer

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spaolacci/murmur3"
	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/openapi"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/variation"
)

// Entry is one written variation.
type Entry struct {
	Operation *postman.Operation
	Source    *openapi.MappedOperation
	Config    variation.Config
	Test      *variation.Test
	Err       error // apply failure, if any
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets a custom structured logger for the writer.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// WithFolder changes the folder receiving variations.
func WithFolder(name string) Option {
	return func(w *Writer) { w.folder = name }
}

// Writer collects variations. It is not safe for concurrent use.
type Writer struct {
	logger  *slog.Logger
	folder  string
	entries []Entry
	ids     map[string]bool
}

// New creates an empty Writer.
func New(opts ...Option) *Writer {
	w := &Writer{
		logger: slog.Default(),
		folder: defaults.VariationsFolder,
		ids:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Reserve marks ids as taken, typically the ids of the base collection.
func (w *Writer) Reserve(ids ...string) {
	for _, id := range ids {
		if id != "" {
			w.ids[id] = true
		}
	}
}

// InjectVariation applies cfg to op and records the result. Apply
// failures are logged and kept on the entry; the variation is written
// with whatever could be applied.
func (w *Writer) InjectVariation(op *postman.Operation, oa *openapi.MappedOperation, cfg variation.Config, meta *variation.Test) {
	if op == nil || op.Item == nil {
		return
	}
	err := Apply(op, cfg)
	if err != nil {
		w.logger.Warn("overwrite not fully applied",
			slog.String("variation", op.Name()),
			slog.String("error", err.Error()))
	}
	op.Item.ID = w.uniqueID(op.ID(), op.Name())
	w.ids[op.Item.ID] = true
	w.entries = append(w.entries, Entry{Operation: op, Source: oa, Config: cfg, Test: meta, Err: err})
}

// uniqueID returns id, or id with a hash suffix of name when id is
// already taken. The suffix is stable across runs.
func (w *Writer) uniqueID(id, name string) string {
	if id != "" && !w.ids[id] {
		return id
	}
	for n := 0; ; n++ {
		seed := name
		if n > 0 {
			seed = fmt.Sprintf("%s#%d", name, n)
		}
		candidate := fmt.Sprintf("%s_%08x", id, murmur3.Sum32([]byte(seed)))
		if !w.ids[candidate] {
			return candidate
		}
	}
}

// Entries returns the written variations in order.
func (w *Writer) Entries() []Entry {
	return slices.Clone(w.entries)
}

// Len returns the number of written variations.
func (w *Writer) Len() int { return len(w.entries) }

// Items returns the request items of every written variation.
func (w *Writer) Items() []*postman.Item {
	items := make([]*postman.Item, len(w.entries))
	for i, e := range w.entries {
		items[i] = e.Operation.Item
	}
	return items
}

// Collection returns a copy of base with the variations appended to the
// variations folder. base is not modified.
func (w *Writer) Collection(base *postman.Collection) *postman.Collection {
	out := base.Clone()
	if len(w.entries) > 0 {
		out.AppendToFolder(w.folder, w.Items()...)
	}
	return out
}
