package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/callout/internal/server"
	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/pipeline"
	"github.com/matzehuels/callout/pkg/scene"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	srv := server.New(server.Config{Logger: log.New(io.Discard)})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	c, err := New(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func testScene() *scene.Scene {
	return &scene.Scene{
		Name:     "client",
		Frame:    geom.Rect{Width: 300, Height: 200},
		Targets:  []scene.Target{{ID: "save", X: 100, Y: 100, Width: 50, Height: 20}},
		Callouts: []scene.Callout{{ID: "tip", Target: "save", Text: "Save", Side: "top"}},
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("localhost:8080"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestPlace(t *testing.T) {
	c := newClient(t)
	res, err := c.Place(context.Background(), server.PlaceRequest{
		Target: geom.Rect{X: 100, Y: 100, Width: 50, Height: 20},
		Box:    geom.Rect{Width: 80, Height: 40},
		Arrow:  geom.Rect{Width: 10, Height: 10},
		Side:   "top",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Box.X != 85 || res.Box.Y != 50 {
		t.Errorf("box = %+v, want (85, 50)", res.Box)
	}

	_, err = c.Place(context.Background(), server.PlaceRequest{Side: "diagonal"})
	if !errors.Is(err, errors.ErrCodeInvalidSide) {
		t.Errorf("err = %v, want INVALID_SIDE", err)
	}
}

func TestSceneRoundTrip(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatal(err)
	}

	rec, err := c.CreateScene(ctx, testScene())
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.GetScene(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Scene.Name != "client" {
		t.Errorf("name = %q", got.Scene.Name)
	}

	list, err := c.ListScenes(ctx, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}

	svg, err := c.RenderScene(ctx, rec.ID, pipeline.FormatSVG, pipeline.Options{Labels: true})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("RenderScene did not return SVG")
	}

	if err := c.DeleteScene(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetScene(ctx, rec.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestRender(t *testing.T) {
	c := newClient(t)
	dot, err := c.Render(context.Background(), testScene(), pipeline.FormatDOT, pipeline.Options{Steps: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(dot, []byte("digraph")) {
		t.Errorf("dot = %q", dot)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() = %v after retries", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		status int
		body   string
		code   errors.Code
	}{
		{http.StatusBadRequest, `{"code":"INVALID_SCENE","error":"bad"}`, errors.ErrCodeInvalidScene},
		{http.StatusNotFound, ``, errors.ErrCodeNotFound},
		{http.StatusBadGateway, `oops`, errors.ErrCodeInternal},
	}
	for _, tt := range tests {
		err := checkStatus(tt.status, []byte(tt.body))
		if got := errors.GetCode(err); got != tt.code {
			t.Errorf("checkStatus(%d) code = %q, want %q", tt.status, got, tt.code)
		}
	}
	if checkStatus(http.StatusNoContent, nil) != nil {
		t.Error("2xx should not be an error")
	}
}
