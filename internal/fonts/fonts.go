// Package fonts loads font faces for certificate text, falling back to an
// embedded font when the requested file is missing or unreadable.
package fonts

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DPI at which point sizes map 1:1 to pixels.
const DPI = 72

var fallback *opentype.Font

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err == nil {
		fallback = f
	}
}

// Loader parses each font file once and hands out faces at any size.
// Failed paths, and failed (path, size) faces, are remembered so each
// warning is logged a single time.
type Loader struct {
	mu         sync.Mutex
	parsed     map[string]*opentype.Font
	failed     map[string]error
	faceFailed map[faceKey]bool
	logger     *zap.Logger
}

type faceKey struct {
	path string
	size float64
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		parsed:     map[string]*opentype.Font{},
		failed:     map[string]error{},
		faceFailed: map[faceKey]bool{},
		logger:     logger,
	}
}

// Face returns a face for path at size points. It never fails: an unreadable
// or unparsable font degrades to Go Regular, and if even that cannot be
// built, to the fixed 7x13 bitmap face.
func (l *Loader) Face(path string, size float64) font.Face {
	if f := l.load(path); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: DPI, Hinting: font.HintingFull})
		if err == nil {
			return face
		}
		if l.markFaceFailed(path, size) {
			l.logger.Warn("font face failed, using default", zap.String("font", path), zap.Float64("size", size), zap.Error(err))
		}
	}
	return Default(size)
}

// markFaceFailed records a failed face and reports whether it is the first
// failure for that path and size.
func (l *Loader) markFaceFailed(path string, size float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := faceKey{path, size}
	if l.faceFailed[k] {
		return false
	}
	l.faceFailed[k] = true
	return true
}

// Default returns the built-in face at size.
func Default(size float64) font.Face {
	if fallback != nil {
		face, err := opentype.NewFace(fallback, &opentype.FaceOptions{Size: size, DPI: DPI, Hinting: font.HintingFull})
		if err == nil {
			return face
		}
	}
	return basicfont.Face7x13
}

// Fallback reports whether path could not be loaded.
func (l *Loader) Fallback(path string) bool {
	return l.load(path) == nil
}

func (l *Loader) load(path string) *opentype.Font {
	if path == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if f, ok := l.parsed[path]; ok {
		return f
	}
	if _, ok := l.failed[path]; ok {
		return nil
	}
	f, err := parseFile(path)
	if err != nil {
		l.failed[path] = err
		l.logger.Warn("font unavailable, using default", zap.String("font", path), zap.Error(err))
		return nil
	}
	l.parsed[path] = f
	return f
}

func parseFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}
