package writer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/waftester/schemafuzz/pkg/jsonpath"
	"github.com/waftester/schemafuzz/pkg/jsonutil"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/variation"
)

// ErrNoRequest is returned when the operation carries no request.
var ErrNoRequest = errors.New("writer: operation has no request")

// Apply rewrites op with every overwrite group of cfg, in group order.
// Instructions that fail are collected and returned together; the
// remaining instructions are still applied.
func Apply(op *postman.Operation, cfg variation.Config) error {
	if op == nil || op.Item == nil || op.Item.Request == nil {
		return ErrNoRequest
	}
	var errs []error
	for _, g := range cfg.Overwrites {
		switch g.Kind {
		case variation.KindRequestBody:
			errs = append(errs, applyBody(op, g.Instructions))
		case variation.KindRequestQueryParams:
			applyQuery(op, g.Instructions)
		case variation.KindRequestHeaders:
			applyHeaders(op.Item.Request, g.Instructions)
		default:
			errs = append(errs, fmt.Errorf("%w: %d", variation.ErrUnsupportedOverwrite, g.Kind))
		}
	}
	return errors.Join(errs...)
}

func applyBody(op *postman.Operation, instructions []variation.Instruction) error {
	raw, ok := op.BodyRaw()
	if !ok {
		raw = "{}"
	}
	var errs []error
	for _, ins := range instructions {
		path := jsonpath.Normalize(ins.Key)
		var (
			next string
			err  error
		)
		if ins.Remove {
			next, err = jsonpath.Delete(raw, path)
		} else {
			next, err = jsonpath.Set(raw, path, ins.Value)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("body %s: %w", ins.Key, err))
			continue
		}
		raw = next
	}
	op.SetBodyRaw(raw)
	return errors.Join(errs...)
}

func applyQuery(op *postman.Operation, instructions []variation.Instruction) {
	params := op.QueryParams()
	for _, ins := range instructions {
		if ins.Remove {
			kept := params[:0]
			for _, p := range params {
				if p.Key != ins.Key {
					kept = append(kept, p)
				}
			}
			params = kept
			continue
		}
		value := text(ins.Value)
		found := false
		for i := range params {
			if params[i].Key == ins.Key {
				params[i].Value = value
				params[i].Disabled = false
				found = true
			}
		}
		if !found {
			params = append(params, postman.QueryParam{Key: ins.Key, Value: value})
		}
	}
	op.SetQueryParams(params)
}

// applyHeaders matches header names case-insensitively.
func applyHeaders(req *postman.Request, instructions []variation.Instruction) {
	for _, ins := range instructions {
		if ins.Remove {
			kept := req.Header[:0]
			for _, h := range req.Header {
				if !strings.EqualFold(h.Key, ins.Key) {
					kept = append(kept, h)
				}
			}
			req.Header = kept
			continue
		}
		value := text(ins.Value)
		found := false
		for i := range req.Header {
			if strings.EqualFold(req.Header[i].Key, ins.Key) {
				req.Header[i].Value = value
				req.Header[i].Disabled = false
				found = true
			}
		}
		if !found {
			req.Header = append(req.Header, postman.KeyValue{Key: ins.Key, Value: value})
		}
	}
}

// text renders an instruction value for query strings and headers.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	data, err := jsonutil.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
