package api

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/png"
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/certgen/internal/certimg"
	"github.com/youruser/certgen/internal/config"
)

func newRouter(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	tpl := filepath.Join(dir, "template.png")
	require.NoError(t, imaging.Save(imaging.New(500, 300, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}), tpl))

	cfg := &config.Config{
		TemplatePath: tpl,
		OutputDir:    filepath.Join(dir, "out"),
		Fields: []config.FieldSpec{
			{Name: config.FieldName, X: 250, Y: 40, FontSize: 30},
			{Name: config.FieldTeam, X: -100, Y: 120, FontSize: 20},
		},
	}
	renderer, err := certimg.NewRenderer(cfg, nil)
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r, NewHandler(renderer, nil))
	return r, cfg
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCertificate(t *testing.T) {
	r, cfg := newRouter(t)

	body := `{"full name": "Jane Doe", "TEAM": "Alpha", "score": 9.5}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/certificate?save=1", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "certificate_Jane_Doe.png")

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 500, img.Bounds().Dx())

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "certificate_Jane_Doe.png"))
	assert.NoError(t, err)
}

func TestCertificateBadBody(t *testing.T) {
	r, _ := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/certificate", bytes.NewBufferString("[1,2")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestColumnsPreview(t *testing.T) {
	r, _ := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/columns?h=Participant+Name&h=Email", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Mapping    map[string]string `json:"mapping"`
		Unresolved []string          `json:"unresolved"`
		Canonical  map[string]string `json:"canonical"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, map[string]string{"Name": "Participant Name"}, got.Mapping)
	assert.Equal(t, []string{"Team"}, got.Unresolved)
	assert.Equal(t, "participantname", got.Canonical["Participant Name"])
}

func TestQR(t *testing.T) {
	r, _ := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/qr?text=ID-1&size=128", nil))
	require.Equal(t, http.StatusOK, w.Code)
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/qr", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQRSizeLimit(t *testing.T) {
	r, _ := newRouter(t)

	for _, size := range []string{"200000", "2049", "0", "abc"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/qr?text=ID-1&size="+size, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "size %s", size)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/qr?text=ID-1&size=2048", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCertificateDispositionEscapesName(t *testing.T) {
	r, _ := newRouter(t)

	body := `{"Name": "Dwayne \"The Rock\" Johnson"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/certificate", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	disp, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "inline", disp)
	assert.Equal(t, `certificate_Dwayne_"The_Rock"_Johnson.png`, params["filename"])
}
