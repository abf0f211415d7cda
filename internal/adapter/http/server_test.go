package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/noise-dashboard/internal/adapter/http"
	"github.com/couchcryptid/noise-dashboard/internal/observability"
	"github.com/couchcryptid/noise-dashboard/internal/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type mockFetcher struct {
	body []byte
	err  error
	urls []string
}

func (m *mockFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	m.urls = append(m.urls, rawURL)
	return m.body, m.err
}

// readyDashboard overrides the readiness check of a real pipeline.
type readyDashboard struct {
	*pipeline.Pipeline
	err error
}

func (d readyDashboard) CheckReadiness(_ context.Context) error { return d.err }

type testServer struct {
	*httpadapter.Server
	metrics *observability.Metrics
	fetcher *mockFetcher
}

type serverOption func(*pipeline.Options, *httpadapter.Options)

func withDataset(path string) serverOption {
	return func(p *pipeline.Options, _ *httpadapter.Options) { p.DatasetPath = path }
}

func withAssets(dir string) serverOption {
	return func(p *pipeline.Options, h *httpadapter.Options) {
		p.AssetsDir = dir
		h.AssetsDir = dir
	}
}

func withMaxUpload(n int64) serverOption {
	return func(_ *pipeline.Options, h *httpadapter.Options) { h.MaxUploadBytes = n }
}

func newTestServer(readyErr error, options ...serverOption) *testServer {
	popts := pipeline.Options{MaxRows: 1000}
	hopts := httpadapter.Options{MaxUploadBytes: 1 << 20}
	for _, o := range options {
		o(&popts, &hopts)
	}
	metrics := observability.NewMetricsForTesting()
	fetcher := &mockFetcher{}
	p := pipeline.New(fetcher, slog.Default(), metrics, popts)
	srv := httpadapter.NewServer(":0", readyDashboard{Pipeline: p, err: readyErr}, slog.Default(), metrics, hopts)
	return &testServer{Server: srv, metrics: metrics, fetcher: fetcher}
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// postMultipart submits form fields and files (field name -> content).
func postMultipart(t *testing.T, srv http.Handler, target string, fields, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for k, v := range files {
		fw, err := w.CreateFormFile(k, k+".upload")
		require.NoError(t, err)
		_, err = fw.Write([]byte(v))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

const twoCities = "latitude,longitude,noise_level\n19.07,72.87,72.0\n18.52,73.85,70.5\n"

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := get(t, srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := get(t, srv, "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("assets directory missing"))
	rec := get(t, srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "assets directory missing", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := get(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRequestMetricsUseRoutePattern(t *testing.T) {
	srv := newTestServer(nil)
	get(t, srv, "/heatmap")
	get(t, srv, "/no/such/page")

	assert.InDelta(t, 1, testutil.ToFloat64(srv.metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/heatmap", "2xx")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(srv.metrics.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "4xx")), 0)
}

func TestEveryPageRendersWithSidebarSelection(t *testing.T) {
	srv := newTestServer(nil)

	for _, p := range httpadapter.Pages {
		t.Run(p.String(), func(t *testing.T) {
			rec := get(t, srv, p.Path())

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			body := rec.Body.String()
			assert.Contains(t, body, "<title>"+p.Title())
			assert.Contains(t, body, fmt.Sprintf(`<a href="%s" class="selected"`, p.Path()))
			assert.Equal(t, 1, strings.Count(body, `class="selected"`))
			assert.InDelta(t, 1, testutil.ToFloat64(srv.metrics.PageRenders.WithLabelValues(p.String())), 0)
		})
	}
}

func TestPageTitlesAndPaths(t *testing.T) {
	assert.Equal(t, "Main Website", httpadapter.PageHome.Title())
	assert.Equal(t, "/", httpadapter.PageHome.Path())
	assert.Equal(t, "Noise Heatmap Generator", httpadapter.PageHeatmap.Title())
	assert.Equal(t, "heatmap", httpadapter.PageHeatmap.String())
	assert.Equal(t, "page(99)", httpadapter.Page(99).String())
}

func TestHeatmapWithoutUploadShowsInfo(t *testing.T) {
	srv := newTestServer(nil)
	body := get(t, srv, "/heatmap").Body.String()

	assert.Contains(t, body, `class="notice notice-info"`)
	assert.Contains(t, body, "Please upload a CSV file with columns: latitude, longitude, noise_level")
	assert.NotContains(t, body, `id="map"`)
}

func TestHeatmapUploadDrawsMapAndStatistics(t *testing.T) {
	srv := newTestServer(nil)
	rec := postMultipart(t, srv, "/heatmap", nil, map[string]string{"file": twoCities})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Data Preview")
	assert.Contains(t, body, `id="map"`)
	assert.Contains(t, body, "L.heatLayer")
	assert.Contains(t, body, "Average Noise Level: 71.25 dB")
	assert.Contains(t, body, "Maximum Noise Level: 72.00 dB")
	assert.Contains(t, body, "Minimum Noise Level: 70.50 dB")
	assert.Contains(t, body, "<svg")
	assert.InDelta(t, 1, testutil.ToFloat64(srv.metrics.Uploads.WithLabelValues(pipeline.FlowHeatmap, "ok")), 0)
}

func TestHeatmapMissingColumnShowsErrorWithoutMap(t *testing.T) {
	srv := newTestServer(nil)
	rec := postMultipart(t, srv, "/heatmap", nil, map[string]string{"file": "latitude,longitude\n19.07,72.87\n"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `class="notice notice-error"`)
	assert.Contains(t, body, "CSV must contain columns: latitude, longitude, noise_level (missing: noise_level)")
	assert.Contains(t, body, "Data Preview")
	assert.NotContains(t, body, `id="map"`)
}

func TestHeatmapExtremeValuesStillRender(t *testing.T) {
	srv := newTestServer(nil)
	rec := postMultipart(t, srv, "/heatmap", nil, map[string]string{
		"file": "latitude,longitude,noise_level\n19.07,72.87,-1e308\n18.52,73.85,1e308\n21.14,79.08,inf\n",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="map"`)
	assert.Contains(t, body, `class="notice notice-warning"`)
	assert.NotContains(t, body, "unsupported value")
}

func TestHeatmapUploadOverLimitIsRejected(t *testing.T) {
	srv := newTestServer(nil, withMaxUpload(64))
	big := twoCities + strings.Repeat("19.0,73.0,70.0\n", 100)
	rec := postMultipart(t, srv, "/heatmap", nil, map[string]string{"file": big})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `class="notice notice-error"`)
	assert.NotContains(t, body, "Data Preview")
	assert.NotContains(t, body, `id="map"`)
}

func TestMapDefaultsShowMarkersAndCities(t *testing.T) {
	srv := newTestServer(nil)
	body := get(t, srv, "/map").Body.String()

	assert.Contains(t, body, `id="map"`)
	assert.Contains(t, body, "Major cities")
	assert.Contains(t, body, "Akola")
	assert.Contains(t, body, `value="cartodb-positron" selected`)
	assert.Contains(t, body, `name="markers" value="true" checked`)
	assert.NotContains(t, body, `name="heatmap" value="true" checked`)
}

func TestMapUrlEncodedControls(t *testing.T) {
	srv := newTestServer(nil)
	form := url.Values{"zoom": {"8"}, "tiles": {"openstreetmap"}, "heatmap": {"true"}}
	req := httptest.NewRequest(http.MethodPost, "/map", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="openstreetmap" selected`)
	assert.Contains(t, body, `value="8"`)
	assert.Contains(t, body, "tile.openstreetmap.org")
	assert.Contains(t, body, "Sample noise heat")
	assert.NotContains(t, body, "Major cities")
}

func TestMapInvalidControlsFallBackToDefaults(t *testing.T) {
	srv := newTestServer(nil)
	rec := postMultipart(t, srv, "/map", map[string]string{"zoom": "42", "tiles": "watercolor"}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `class="notice notice-warning"`)
	assert.Contains(t, body, "Some map controls were invalid; the defaults are shown instead.")
	assert.Contains(t, body, `value="cartodb-positron" selected`)
	assert.Contains(t, body, "Major cities")
}

func TestMapBoundaryFromURL(t *testing.T) {
	srv := newTestServer(nil)
	srv.fetcher.body = []byte(`{"type":"Polygon","coordinates":[[[72,18],[80,18],[80,22],[72,22],[72,18]]]}`)

	rec := postMultipart(t, srv, "/map", map[string]string{
		"boundary":     "url",
		"boundary_url": "https://example.com/maharashtra.geojson",
		"markers":      "true",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "GeoJSON loaded (URL).")
	assert.Contains(t, body, "FeatureCollection")
	assert.Equal(t, []string{"https://example.com/maharashtra.geojson"}, srv.fetcher.urls)
}

func TestMapBoundaryUploadAndCSVHeat(t *testing.T) {
	srv := newTestServer(nil)
	rec := postMultipart(t, srv, "/map",
		map[string]string{"boundary": "upload", "heatmap": "true"},
		map[string]string{
			"boundary_file": `{"type":"Feature","properties":{"name":"Pune"},"geometry":{"type":"Point","coordinates":[73.85,18.52]}}`,
			"csv":           "Latitude,LONGITUDE,Value\n19.07,72.87,72\n",
		})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "GeoJSON loaded (upload).")
	assert.Contains(t, body, "CSV loaded for heatmap.")
	assert.Contains(t, body, "Noise heat")
	assert.Empty(t, srv.fetcher.urls)
}

func TestMapCSVWithInfiniteValueKeepsSceneValid(t *testing.T) {
	srv := newTestServer(nil)
	rec := postMultipart(t, srv, "/map",
		map[string]string{"heatmap": "true"},
		map[string]string{"csv": "Latitude,Longitude,Value\n19.07,72.87,72\n18.52,73.85,inf\n"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "unsupported value")
	assert.Contains(t, body, "Noise heat")
	assert.Contains(t, body, `class="notice notice-warning"`)
}

func TestMapUnreadableCSVShowsErrorAndSampleHeat(t *testing.T) {
	srv := newTestServer(nil)
	rec := postMultipart(t, srv, "/map",
		map[string]string{"heatmap": "true"},
		map[string]string{"csv": ""})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `class="notice notice-error"`)
	assert.Contains(t, body, "Failed to read CSV")
	assert.Contains(t, body, "Sample noise heat")
}

func TestChartsPageEmbedsWidgets(t *testing.T) {
	srv := newTestServer(nil)
	body := get(t, srv, "/charts").Body.String()

	assert.Contains(t, body, `src="/charts/widgets"`)
	assert.Contains(t, body, "Average_dB")
	assert.Contains(t, body, "Aurangabad")
}

func TestChartWidgets(t *testing.T) {
	srv := newTestServer(nil)
	rec := get(t, srv, "/charts/widgets")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "echarts")
	assert.Contains(t, body, "Noise Charts 2019")
}

func TestCitiesWithoutDatasetWarns(t *testing.T) {
	srv := newTestServer(nil)
	body := get(t, srv, "/cities?city=Pune").Body.String()

	assert.Contains(t, body, "Pune Data")
	assert.Contains(t, body, "No dataset configured; set DATASET_PATH to show city data.")
}

func TestCitiesShowsMatchingRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noise.csv")
	require.NoError(t, os.WriteFile(path, []byte("City,noise_level\npune,70\nMumbai,72\nPUNE,71\n"), 0o600))
	srv := newTestServer(nil, withDataset(path))

	body := get(t, srv, "/cities?city=Pune").Body.String()

	assert.Contains(t, body, "Showing Pune Data...")
	assert.Contains(t, body, "<td>pune</td>")
	assert.Contains(t, body, "<td>PUNE</td>")
	assert.NotContains(t, body, "<td>Mumbai</td>")
}

func TestCitiesInvalidQueryWarns(t *testing.T) {
	srv := newTestServer(nil)
	body := get(t, srv, "/cities?city="+strings.Repeat("x", 100)).Body.String()

	assert.Contains(t, body, "Invalid city selection.")
}

func TestAssetsAreServed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pune.jpg"), []byte("jpeg"), 0o600))
	srv := newTestServer(nil, withAssets(dir))

	rec := get(t, srv, "/assets/pune.jpg")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg", rec.Body.String())
}

func TestDatasetsUploadDescribes(t *testing.T) {
	srv := newTestServer(nil)
	rec := postMultipart(t, srv, "/datasets", nil, map[string]string{"file": twoCities})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "File uploaded successfully!")
	assert.Contains(t, body, "Preview of Dataset")
	assert.Contains(t, body, "Basic Info")
	assert.Contains(t, body, "<th>25%</th>")
	assert.Contains(t, body, "<td>71.250000</td>")
}

func TestDatasetsWithoutUploadShowsInfo(t *testing.T) {
	srv := newTestServer(nil)
	body := get(t, srv, "/datasets").Body.String()

	assert.Contains(t, body, "Upload a CSV file to preview and summarise it.")
	assert.NotContains(t, body, "Basic Info")
}
