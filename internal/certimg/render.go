// Package certimg draws recipient text onto a certificate template.
package certimg

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/youruser/certgen/internal/columns"
	"github.com/youruser/certgen/internal/config"
	"github.com/youruser/certgen/internal/fonts"
	"github.com/youruser/certgen/internal/roster"
	"github.com/youruser/certgen/internal/util"
)

// Values is a resolved row: logical field -> trimmed text ("" when absent).
type Values map[string]string

// Name returns the Name field, or NoName when it is blank.
func (v Values) Name() string {
	if n := v[config.FieldName]; n != "" {
		return n
	}
	return NoName
}

type fieldStyle struct {
	spec  config.FieldSpec
	color color.NRGBA
}

// Renderer turns resolved rows into certificate images. It holds only
// read-only configuration and a font cache, so one Renderer can serve every
// row of a batch.
type Renderer struct {
	cfg    *config.Config
	fields []fieldStyle
	fonts  *fonts.Loader
	logger *zap.Logger
}

func NewRenderer(cfg *config.Config, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Renderer{cfg: cfg, fonts: fonts.NewLoader(logger), logger: logger}
	for _, f := range cfg.Fields {
		c, err := config.ParseColor(f.Color)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		r.fields = append(r.fields, fieldStyle{spec: f, color: c})
	}
	return r, nil
}

// Columns builds a resolver for a table's headers covering every field the
// renderer needs, including the QR source field.
func (r *Renderer) Columns(headers []string) *columns.Resolver {
	var fields []columns.Field
	seen := map[string]bool{}
	for _, f := range r.cfg.Fields {
		fields = append(fields, columns.Field{Name: f.Name, Aliases: f.Aliases})
		seen[f.Name] = true
	}
	if qr := r.cfg.QR; qr != nil && !seen[qr.Field] {
		fields = append(fields, columns.Field{Name: qr.Field})
	}
	return columns.NewResolver(headers, fields, r.logger)
}

// Resolve extracts every configured field from row. Unresolved columns and
// null cells become "".
func (r *Renderer) Resolve(row roster.Row, cols *columns.Resolver) Values {
	out := Values{}
	for _, f := range r.cfg.Fields {
		out[f.Name] = lookup(row, cols, f.Name)
	}
	if qr := r.cfg.QR; qr != nil {
		if _, ok := out[qr.Field]; !ok {
			out[qr.Field] = lookup(row, cols, qr.Field)
		}
	}
	return out
}

func lookup(row roster.Row, cols *columns.Resolver, field string) string {
	h, ok := cols.Header(field)
	if !ok {
		return ""
	}
	return row.Text(h)
}

// RenderRow resolves row and writes its certificate, returning the path.
func (r *Renderer) RenderRow(row roster.Row, cols *columns.Resolver) (string, error) {
	v := r.Resolve(row, cols)
	return r.Render(v, FileName(v.Name()))
}

// Render draws v onto a fresh copy of the template and saves it as PNG under
// the output directory with the given file name.
func (r *Renderer) Render(v Values, filename string) (string, error) {
	canvas, err := r.Draw(v)
	if err != nil {
		return "", err
	}
	return r.Save(canvas, filename)
}

// Save writes canvas as PNG to the output directory, creating it if needed.
func (r *Renderer) Save(canvas image.Image, filename string) (string, error) {
	if err := util.EnsureDir(r.cfg.OutputDir); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	out := filepath.Join(r.cfg.OutputDir, filename)
	if err := imaging.Save(canvas, out); err != nil {
		return "", fmt.Errorf("saving %s: %w", out, err)
	}
	return out, nil
}

// Draw returns the template with v drawn on it. The template is decoded on
// every call; nothing is shared between canvases.
func (r *Renderer) Draw(v Values) (*image.NRGBA, error) {
	tpl, err := imaging.Open(r.cfg.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("opening template: %w", err)
	}
	canvas := imaging.Clone(tpl)
	width := canvas.Bounds().Dx()

	for _, f := range r.fields {
		text := v[f.spec.Name]
		if text == "" {
			continue
		}
		face := r.fonts.Face(f.spec.FontPath, f.spec.FontSize)
		drawCentered(canvas, face, text, AnchorX(f.spec.X, width), f.spec.Y, f.color)
		face.Close()
	}

	if qr := r.cfg.QR; qr != nil {
		if text := v[qr.Field]; text != "" {
			code, err := GenerateQRImage(text, qr.Size)
			if err != nil {
				return nil, fmt.Errorf("qr for %s: %w", qr.Field, err)
			}
			canvas = imaging.Paste(canvas, code, image.Pt(AnchorX(qr.X, width), qr.Y))
		}
	}
	return canvas, nil
}

// drawCentered draws text with its advance width centered on cx and the top
// of the line box at y.
func drawCentered(dst *image.NRGBA, face font.Face, text string, cx, y int, c color.Color) {
	w := font.MeasureString(face, text).Round()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(cx-w/2, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
