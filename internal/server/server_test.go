package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/peterhaneve/ONIMods-sub014/internal/lighting"
	"github.com/peterhaneve/ONIMods-sub014/internal/mods"
	"github.com/peterhaneve/ONIMods-sub014/internal/registry"
	"github.com/peterhaneve/ONIMods-sub014/internal/testutil/testlog"
)

type fakeSource struct {
	services []registry.ServiceStatus
	mods     []mods.Metadata
	shapes   []lighting.ShapeInfo
	preview  PreviewResult
	okShapes map[string]bool
}

func (f *fakeSource) ServiceSnapshot() []registry.ServiceStatus { return f.services }
func (f *fakeSource) ModList() []mods.Metadata                  { return f.mods }
func (f *fakeSource) ShapeList() []lighting.ShapeInfo           { return f.shapes }

func (f *fakeSource) PreviewLight(req PreviewRequest) (PreviewResult, bool) {
	if !f.okShapes[req.ShapeID] {
		return PreviewResult{}, false
	}
	return f.preview, true
}

func newTestSource() *fakeSource {
	return &fakeSource{
		services: []registry.ServiceStatus{
			{ServiceID: "sim.lights", Elected: true, ElectedModule: "mod.lights", ElectedVersion: "2.3.0"},
		},
		mods: []mods.Metadata{
			{ID: "mod.lights", Name: "Lights"},
		},
		shapes: []lighting.ShapeInfo{
			{ID: "lights.beam", Ordinal: 1, GridShape: 2},
		},
		preview: PreviewResult{
			Shape: "lights.beam",
			Cells: []PreviewCell{{X: 3, Y: 4, Lux: 250}},
		},
		okShapes: map[string]bool{"lights.beam": true},
	}
}

func TestOpenRoutes(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	srv := New(Config{ListenAddr: ":0", HostID: "host_a"}, newTestSource())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health status: got=%d want=%d", rr.Code, http.StatusOK)
	}
	var health map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "ok" || health["host_id"] != "host_a" {
		t.Fatalf("unexpected health payload: %v", health)
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: got=%d want=%d", rr.Code, http.StatusOK)
	}
	if rr.Body.Len() == 0 {
		t.Fatalf("expected non-empty metrics exposition")
	}
}

func TestServiceAndShapeListings(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	srv := New(Config{ListenAddr: ":0", HostID: "host_a"}, newTestSource())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/services", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("services status: got=%d want=%d", rr.Code, http.StatusOK)
	}
	var body struct {
		Services []registry.ServiceStatus `json:"services"`
		Count    int                      `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode services: %v", err)
	}
	if body.Count != 1 || len(body.Services) != 1 {
		t.Fatalf("service count: got=%d want=1", body.Count)
	}
	if body.Services[0].ServiceID != "sim.lights" || !body.Services[0].Elected {
		t.Fatalf("unexpected service row: %+v", body.Services[0])
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/lighting/shapes", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("shapes status: got=%d want=%d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "lights.beam") {
		t.Fatalf("expected shape id in payload, got %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/mods", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("mods status: got=%d want=%d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "mod.lights") {
		t.Fatalf("expected mod id in payload, got %s", rr.Body.String())
	}
}

func TestPreviewEndpoint(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	srv := New(Config{ListenAddr: ":0", HostID: "host_a"}, newTestSource())

	post := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/lighting/preview", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		return rr
	}

	rr := post(`{"origin_x":0,"origin_y":0,"radius":4,"shape_id":"lights.beam","lux":1000}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("preview status: got=%d want=%d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var result PreviewResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if result.Shape != "lights.beam" || len(result.Cells) != 1 || result.Cells[0].Lux != 250 {
		t.Fatalf("unexpected preview result: %+v", result)
	}

	if rr := post(`{"origin_x":0,"origin_y":0,"radius":4,"shape_id":"no.such","lux":1000}`); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown shape status: got=%d want=%d", rr.Code, http.StatusNotFound)
	}
	if rr := post(`{"radius":0,"shape_id":"lights.beam","lux":1000}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("zero radius status: got=%d want=%d", rr.Code, http.StatusBadRequest)
	}
	if rr := post(`not json`); rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status: got=%d want=%d", rr.Code, http.StatusBadRequest)
	}
}

func TestTokenGuardOnOpsRoutes(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	srv := New(Config{ListenAddr: ":0", HostID: "host_a", AuthToken: "s3cret"}, newTestSource())

	get := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		return rr.Code
	}

	if code := get("/services", ""); code != http.StatusUnauthorized {
		t.Fatalf("missing token: got=%d want=%d", code, http.StatusUnauthorized)
	}
	if code := get("/services", "wrong"); code != http.StatusUnauthorized {
		t.Fatalf("wrong token: got=%d want=%d", code, http.StatusUnauthorized)
	}
	if code := get("/services", "s3cret"); code != http.StatusOK {
		t.Fatalf("valid token: got=%d want=%d", code, http.StatusOK)
	}

	// Health and metrics stay open for probes and scrapers.
	if code := get("/health", ""); code != http.StatusOK {
		t.Fatalf("health with token guard: got=%d want=%d", code, http.StatusOK)
	}
	if code := get("/metrics", ""); code != http.StatusOK {
		t.Fatalf("metrics with token guard: got=%d want=%d", code, http.StatusOK)
	}
}
