package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Logical field names the renderer knows about.
const (
	FieldName = "Name"
	FieldTeam = "Team"
	FieldID   = "ID"
)

// Config is the static configuration for a run. It is built once by Load
// and treated as read-only afterwards.
type Config struct {
	TemplatePath string      `yaml:"template"`
	DataPath     string      `yaml:"data"`
	Sheet        string      `yaml:"sheet"`
	OutputDir    string      `yaml:"output_dir"`
	PDFBundle    string      `yaml:"pdf_bundle"`
	Fields       []FieldSpec `yaml:"fields"`
	QR           *QRSpec     `yaml:"qr"`
}

// FieldSpec places one logical field on the template.
type FieldSpec struct {
	Name     string   `yaml:"name"`
	Aliases  []string `yaml:"aliases"`
	X        int      `yaml:"x"` // negative: offset from the right edge
	Y        int      `yaml:"y"`
	FontPath string   `yaml:"font"`
	FontSize float64  `yaml:"font_size"`
	Color    string   `yaml:"color"`
}

// QRSpec encodes a field value as a QR code pasted at X, Y.
type QRSpec struct {
	Field string `yaml:"field"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	Size  int    `yaml:"size"`
}

// Default mirrors the layout the tool has always shipped with.
func Default() *Config {
	return &Config{
		TemplatePath: "template/certificate.png",
		DataPath:     "data/recipients.xlsx",
		OutputDir:    "output",
		Fields: []FieldSpec{
			{Name: FieldName, Aliases: []string{"Full Name", "Participant"}, X: 1300, Y: 900, FontPath: "fonts/YourBoldFont.ttf", FontSize: 80, Color: "#000000"},
			{Name: FieldTeam, Aliases: []string{"Team Name", "Group"}, X: 1300, Y: 1000, FontPath: "fonts/YourRegularFont.ttf", FontSize: 50, Color: "#000000"},
			{Name: FieldID, Aliases: []string{"USN", "Roll No", "Other"}, X: 1300, Y: 1100, FontPath: "fonts/YourRegularFont.ttf", FontSize: 50, Color: "#000000"},
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then .env and CERTGEN_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()
	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("CERTGEN_TEMPLATE"); v != "" {
		cfg.TemplatePath = v
	}
	if v := os.Getenv("CERTGEN_DATA"); v != "" {
		cfg.DataPath = v
	}
	if v := os.Getenv("CERTGEN_SHEET"); v != "" {
		cfg.Sheet = v
	}
	if v := os.Getenv("CERTGEN_OUTPUT"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("CERTGEN_PDF_BUNDLE"); v != "" {
		cfg.PDFBundle = v
	}
}

// Validate checks that the configuration can drive a render.
func (c *Config) Validate() error {
	var errs []error
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is empty"))
	}
	if len(c.Fields) == 0 {
		errs = append(errs, errors.New("no fields configured"))
	}
	seen := map[string]bool{}
	for i, f := range c.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("fields[%d]: name is empty", i))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("fields[%d]: duplicate field %q", i, f.Name))
		}
		seen[f.Name] = true
		if f.FontSize <= 0 {
			errs = append(errs, fmt.Errorf("field %s: font_size must be positive", f.Name))
		}
		if _, err := ParseColor(f.Color); err != nil {
			errs = append(errs, fmt.Errorf("field %s: %w", f.Name, err))
		}
	}
	if len(c.Fields) > 0 && !seen[FieldName] {
		errs = append(errs, fmt.Errorf("a %q field is required", FieldName))
	}
	if c.QR != nil {
		if c.QR.Field == "" {
			errs = append(errs, errors.New("qr: field is empty"))
		}
		if c.QR.Size <= 0 {
			errs = append(errs, errors.New("qr: size must be positive"))
		}
	}
	return errors.Join(errs...)
}

// Field returns the spec for the logical field name.
func (c *Config) Field(name string) (FieldSpec, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// ParseColor accepts #RGB, #RRGGBB and #RRGGBBAA. Empty means black.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return color.NRGBA{A: 0xff}, nil
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
