// Package bundle collects rendered certificates into a single PDF, one page
// per image, each page sized to its image.
package bundle

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"github.com/youruser/certgen/internal/util"
)

var ErrNoPages = errors.New("no certificates to bundle")

// WritePDF writes the PNGs at paths to out. Pixels map to points 1:1.
func WritePDF(out string, paths []string) error {
	if len(paths) == 0 {
		return ErrNoPages
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for _, p := range paths {
		w, h, err := imageSize(p)
		if err != nil {
			return err
		}
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
		pdf.ImageOptions(p, 0, 0, w, h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("adding %s: %w", p, err)
		}
	}

	if err := util.EnsureDir(filepath.Dir(out)); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(out)
}

func imageSize(path string) (float64, float64, error) {
	fp, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer fp.Close()
	cfg, _, err := image.DecodeConfig(fp)
	if err != nil {
		return 0, 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}
