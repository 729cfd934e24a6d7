package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	name, ok := cfg.Field(FieldName)
	require.True(t, ok)
	assert.Equal(t, 1300, name.X)
	assert.Equal(t, 900, name.Y)
	assert.Equal(t, 80.0, name.FontSize)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "certgen.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
template: tpl.png
data: people.csv
output_dir: out
fields:
  - name: Name
    x: -300
    y: 400
    font: fonts/Bold.ttf
    font_size: 64
    color: "#1a2b3c"
  - name: Team
    aliases: [Squad]
    x: 500
    y: 520
    font_size: 32
qr:
  field: ID
  x: -200
  y: 40
  size: 150
`), 0o644))

	t.Setenv("CERTGEN_OUTPUT", filepath.Join(dir, "env-out"))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "tpl.png", cfg.TemplatePath)
	assert.Equal(t, "people.csv", cfg.DataPath)
	assert.Equal(t, filepath.Join(dir, "env-out"), cfg.OutputDir)
	require.Len(t, cfg.Fields, 2)
	assert.Equal(t, -300, cfg.Fields[0].X)
	assert.Equal(t, []string{"Squad"}, cfg.Fields[1].Aliases)
	require.NotNil(t, cfg.QR)
	assert.Equal(t, 150, cfg.QR.Size)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		OutputDir: "out",
		Fields: []FieldSpec{
			{Name: FieldTeam, FontSize: 0, Color: "zz"},
			{Name: FieldTeam, FontSize: 10},
		},
		QR: &QRSpec{},
	}
	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "font_size must be positive")
	assert.Contains(t, msg, "invalid color")
	assert.Contains(t, msg, "duplicate field")
	assert.Contains(t, msg, `"Name" field is required`)
	assert.Contains(t, msg, "qr: field is empty")
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, c)

	c, err = ParseColor("fff")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, c)

	c, err = ParseColor("")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{A: 0xff}, c)

	_, err = ParseColor("#12345")
	assert.Error(t, err)
}
