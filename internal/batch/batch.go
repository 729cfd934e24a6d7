// Package batch renders a whole roster, one certificate per row, and
// collects a per-row report. A failing row never stops the batch.
package batch

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/youruser/certgen/internal/certimg"
	"github.com/youruser/certgen/internal/columns"
	"github.com/youruser/certgen/internal/config"
	"github.com/youruser/certgen/internal/roster"
)

var (
	ErrTemplateNotFound = errors.New("template file not found")
	ErrDataNotFound     = errors.New("input table not found")
)

// Renderer is the part of certimg.Renderer the batch needs.
type Renderer interface {
	Columns(headers []string) *columns.Resolver
	Resolve(row roster.Row, cols *columns.Resolver) certimg.Values
	Render(v certimg.Values, filename string) (string, error)
}

// RowResult is the outcome for one roster row. Index is zero-based over the
// non-blank data rows; Line is the row number in the source file.
type RowResult struct {
	Index int
	Line  int
	Name  string
	Path  string
	Err   error
}

func (r RowResult) OK() bool { return r.Err == nil }

// Report aggregates a batch run.
type Report struct {
	Mapping map[string]string
	Results []RowResult
}

func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

func (r *Report) Failures() []RowResult {
	var out []RowResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Paths lists the written files in row order.
func (r *Report) Paths() []string {
	var out []string
	for _, res := range r.Results {
		if res.OK() && res.Path != "" {
			out = append(out, res.Path)
		}
	}
	return out
}

// Options tune a Run.
type Options struct {
	// DryRun resolves rows and names files without drawing anything.
	DryRun bool
}

// CheckInputs reports the fatal startup conditions: a missing template or
// a missing input table.
func CheckInputs(cfg *config.Config) error {
	if _, err := os.Stat(cfg.TemplatePath); err != nil {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, cfg.TemplatePath)
	}
	if _, err := os.Stat(cfg.DataPath); err != nil {
		return fmt.Errorf("%w: %s", ErrDataNotFound, cfg.DataPath)
	}
	return nil
}

// Run renders every row of tbl in order.
func Run(tbl *roster.Table, r Renderer, opts Options, logger *zap.Logger) *Report {
	if logger == nil {
		logger = zap.NewNop()
	}
	cols := r.Columns(tbl.Headers)
	rep := &Report{Mapping: cols.Mapping()}
	logColumns(logger, rep.Mapping, cols.Unresolved())

	names := newNamer()
	for i, row := range tbl.Rows {
		res := renderRow(i, tbl.Line(i), row, cols, r, names, opts, logger)
		rep.Results = append(rep.Results, res)
	}

	logger.Info("batch complete",
		zap.Int("rows", len(rep.Results)),
		zap.Int("succeeded", rep.Succeeded()),
		zap.Int("failed", len(rep.Failures())))
	return rep
}

func renderRow(i, line int, row roster.Row, cols *columns.Resolver, r Renderer, names *namer, opts Options, logger *zap.Logger) (res RowResult) {
	res.Index = i
	res.Line = line
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("panic: %v", p)
		}
		if res.Err != nil {
			logger.Error("row failed", zap.Int("row", i), zap.Int("line", line), zap.String("name", res.Name), zap.Error(res.Err))
		}
	}()

	v := r.Resolve(row, cols)
	res.Name = v.Name()
	logger.Info("generating", zap.Int("row", i), zap.Int("line", line), zap.String("name", res.Name))

	filename := names.next(certimg.FileName(v[config.FieldName]))
	if opts.DryRun {
		res.Path = filename
		return res
	}
	path, err := r.Render(v, filename)
	if err != nil {
		res.Err = err
		return res
	}
	res.Path = path
	logger.Info("saved", zap.Int("row", i), zap.String("path", path))
	return res
}

func logColumns(logger *zap.Logger, mapping map[string]string, unresolved []string) {
	fields := make([]string, 0, len(mapping))
	for f := range mapping {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	pairs := make([]string, 0, len(fields))
	for _, f := range fields {
		pairs = append(pairs, f+"="+mapping[f])
	}
	logger.Info("resolved columns",
		zap.String("mapping", strings.Join(pairs, ", ")),
		zap.Strings("unresolved", unresolved))
}

// namer hands out unique file names within one batch. The first use of a
// name is returned as is; repeats get _2, _3, ... before the extension.
type namer struct {
	used map[string]int
}

func newNamer() *namer { return &namer{used: map[string]int{}} }

func (n *namer) next(filename string) string {
	key := strings.ToLower(filename)
	n.used[key]++
	if c := n.used[key]; c > 1 {
		base := strings.TrimSuffix(filename, ".png")
		candidate := fmt.Sprintf("%s_%d.png", base, c)
		// the suffixed name may itself be taken by a literal name
		for n.used[strings.ToLower(candidate)] > 0 {
			c++
			candidate = fmt.Sprintf("%s_%d.png", base, c)
		}
		n.used[strings.ToLower(candidate)]++
		return candidate
	}
	return filename
}
