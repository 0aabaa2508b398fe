package schemaerr

import (
	"fmt"
	"log/slog"
)

// Errors collects the diagnostics of a run. A nil *Errors is empty.
type Errors struct {
	errs []SchemaError
}

func (r *Errors) With(err ...SchemaError) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []SchemaError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

// Fatal returns the first fatal error collected, or nil
func (r *Errors) Fatal() SchemaError {
	for _, e := range r.Errors() {
		if e.Fatal() {
			return e
		}
	}
	return nil
}

// Count returns how many collected errors carry code
func (r *Errors) Count(code ErrCode) int {
	n := 0
	for _, e := range r.Errors() {
		if e.Code() == code {
			n++
		}
	}
	return n
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Errors() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
