package columns

import (
	"sort"

	"go.uber.org/zap"
)

// Field is a logical field together with the physical header names that may
// carry it.
type Field struct {
	Name    string
	Aliases []string
}

func (f Field) candidates() []string {
	return append([]string{f.Name}, f.Aliases...)
}

// Resolver memoizes field resolution for one table. The header set of a
// table is fixed, so each field is matched once and reused for every row.
type Resolver struct {
	headers []string
	matches map[string]Match
	logger  *zap.Logger
}

// NewResolver resolves every field against headers up front and logs any
// fallback decision.
func NewResolver(headers []string, fields []Field, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		headers: append([]string(nil), headers...),
		matches: make(map[string]Match, len(fields)),
		logger:  logger,
	}
	owner := map[string]string{}
	for _, f := range fields {
		m := FindAny(f.candidates(), r.headers)
		r.matches[f.Name] = m
		if m.Found() {
			if prev, ok := owner[m.Header]; ok {
				logger.Warn("two fields resolved to the same column",
					zap.String("header", m.Header), zap.String("field", f.Name), zap.String("other", prev))
			} else {
				owner[m.Header] = f.Name
			}
		}
		switch {
		case !m.Found():
			logger.Warn("column not found; values will be empty",
				zap.String("field", f.Name), zap.Strings("headers", r.headers))
		case m.Ambiguous:
			logger.Warn("ambiguous column match",
				zap.String("field", f.Name), zap.String("header", m.Header), zap.Stringer("rule", m.Kind))
		}
	}
	return r
}

// Header returns the physical header for field, or false if the field could
// not be resolved. Fields that were not registered are matched on demand.
func (r *Resolver) Header(field string) (string, bool) {
	m, ok := r.matches[field]
	if !ok {
		m = Find(field, r.headers)
		r.matches[field] = m
	}
	return m.Header, m.Found()
}

// Mapping returns field -> header for every resolved field, for diagnostics.
func (r *Resolver) Mapping() map[string]string {
	out := make(map[string]string, len(r.matches))
	for f, m := range r.matches {
		if m.Found() {
			out[f] = m.Header
		}
	}
	return out
}

// Unresolved lists the fields that matched no header, sorted.
func (r *Resolver) Unresolved() []string {
	var out []string
	for f, m := range r.matches {
		if !m.Found() {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
