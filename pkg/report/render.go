package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/waftester/schemafuzz/pkg/iohelper"
	"github.com/waftester/schemafuzz/pkg/jsonutil"
	"github.com/waftester/schemafuzz/templates"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the built-in formats.
func Formats() []Format { return []Format{FormatText, FormatMarkdown, FormatJSON} }

var (
	ErrUnknownFormat = errors.New("report: unknown format")
	ErrTemplate      = errors.New("report: template")
)

// Config selects the report layout. TemplatePath wins over Format.
type Config struct {
	Format       Format
	TemplatePath string
}

// Renderer writes summaries in one format.
type Renderer struct {
	config Config
	tmpl   *template.Template
}

// NewRenderer parses the selected template up front so a bad template
// fails before any generation work.
func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.Format == "" {
		cfg.Format = FormatText
	}
	r := &Renderer{config: cfg}

	var content string
	switch {
	case cfg.TemplatePath != "":
		data, err := iohelper.ReadFile(cfg.TemplatePath, iohelper.TemplateMaxSize)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrTemplate, cfg.TemplatePath, err)
		}
		content = string(data)
	case cfg.Format == FormatJSON:
		return r, nil
	default:
		builtin, ok := templates.Report(string(cfg.Format))
		if !ok {
			return nil, fmt.Errorf("%w: %q (available: text, markdown, json)", ErrUnknownFormat, cfg.Format)
		}
		content = builtin
	}

	tmpl, err := template.New("report").Funcs(funcMap()).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %w", ErrTemplate, err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Render writes s to w.
func (r *Renderer) Render(w io.Writer, s *Summary) error {
	if r.tmpl == nil {
		data, err := jsonutil.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("report: encode: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, s); err != nil {
		return fmt.Errorf("%w: execute: %w", ErrTemplate, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderFile renders s to path, or to stdout when path is "-".
func (r *Renderer) RenderFile(path string, s *Summary) error {
	if path == "-" {
		return r.Render(os.Stdout, s)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := r.Render(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func funcMap() template.FuncMap {
	fm := sprig.TxtFuncMap()
	fm["json"] = tmplToJSON
	fm["mdEscape"] = tmplEscapeMarkdown
	return fm
}

func tmplToJSON(v any) string {
	data, err := jsonutil.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "`", "\\`", "\n", " ")

func tmplEscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
