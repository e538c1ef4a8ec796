package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	httpctrl "github.com/garage-lab/gearbox/pkg/controller/http"
	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/repository/memory"
	"github.com/garage-lab/gearbox/pkg/service/catalog"
	"github.com/garage-lab/gearbox/pkg/service/imagegen"
	"github.com/garage-lab/gearbox/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

type textGenStub struct {
	mu       sync.Mutex
	calls    int
	generate func(ctx context.Context, req model.GuideRequest) (*model.GuideBody, error)
}

func (s *textGenStub) Generate(ctx context.Context, req model.GuideRequest) (*model.GuideBody, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.generate(ctx, req)
}

func stubBody() *model.GuideBody {
	return &model.GuideBody{
		Title:          "Front Brake Pad Replacement",
		VehicleLabel:   "2015 Honda Civic",
		SafetyWarnings: []string{"Support the car on jack stands"},
		Tools:          []string{"Jack"},
		Parts:          []string{"Front brake pads"},
		Steps: []model.RepairStep{
			{Number: 1, Instruction: "Loosen the lug nuts", ImagePrompt: "Lug wrench on a front wheel"},
			{Number: 2, Instruction: "Swap the pads", ImagePrompt: "New pads in the bracket"},
		},
	}
}

func newTestServer(gen *textGenStub, opts ...usecase.Option) *httpctrl.Server {
	base := []usecase.Option{usecase.WithRetryPolicy(1, time.Millisecond)}
	uc := usecase.New(memory.New(), gen, imagegen.NewSynthesizer(nil), catalog.New(), append(base, opts...)...)
	return httpctrl.New(uc)
}

func okStub() *textGenStub {
	return &textGenStub{
		generate: func(ctx context.Context, req model.GuideRequest) (*model.GuideBody, error) {
			body := stubBody()
			body.Title = "Guide for " + req.Task
			return body, nil
		},
	}
}

func postGuide(t *testing.T, srv *httpctrl.Server, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	gt.NoError(t, err).Required()

	req := httptest.NewRequest(http.MethodPost, "/api/guides", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestProduceGuideEndpoint(t *testing.T) {
	t.Run("generates a guide", func(t *testing.T) {
		srv := newTestServer(okStub())

		rec := postGuide(t, srv, map[string]any{
			"year":       "2015",
			"make":       "Honda",
			"model":      "Civic",
			"task":       "replace front brakes",
			"subject_id": "user-1",
		})
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			ID           string             `json:"id"`
			Title        string             `json:"title"`
			VehicleLabel string             `json:"vehicle_label"`
			Steps        []model.RepairStep `json:"steps"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp.ID).Equal("2015-honda-civic-guide-for-replace-front-brakes")
		gt.Value(t, resp.VehicleLabel).Equal("2015 Honda Civic")
		gt.Array(t, resp.Steps).Length(2)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(okStub())
		req := httptest.NewRequest(http.MethodPost, "/api/guides", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("missing subject", func(t *testing.T) {
		srv := newTestServer(okStub())
		rec := postGuide(t, srv, map[string]any{
			"year": "2015", "make": "Honda", "model": "Civic", "task": "replace front brakes",
		})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("invalid vehicle", func(t *testing.T) {
		srv := newTestServer(okStub())
		rec := postGuide(t, srv, map[string]any{
			"year": "20x5", "make": "Honda", "model": "Civic", "task": "replace front brakes", "subject_id": "user-1",
		})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		srv := newTestServer(okStub())
		rec := postGuide(t, srv, map[string]any{
			"year": "1982", "make": "DeLorean", "model": "DMC-12", "task": "flux capacitor", "subject_id": "user-1",
		})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("invalid plan", func(t *testing.T) {
		srv := newTestServer(okStub())
		rec := postGuide(t, srv, map[string]any{
			"year": "2015", "make": "Honda", "model": "Civic", "task": "replace front brakes",
			"subject_id": "user-1", "plan": "enterprise",
		})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("quota exhaustion returns the paywall", func(t *testing.T) {
		srv := newTestServer(okStub(), usecase.WithFreeLimit(1))

		rec := postGuide(t, srv, map[string]any{
			"year": "2015", "make": "Honda", "model": "Civic", "task": "replace front brakes", "subject_id": "user-1",
		})
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		rec = postGuide(t, srv, map[string]any{
			"year": "2015", "make": "Honda", "model": "Civic", "task": "replace alternator", "subject_id": "user-1",
		})
		gt.Number(t, rec.Code).Equal(http.StatusPaymentRequired)

		var paywall struct {
			Paywall bool   `json:"paywall"`
			Message string `json:"message"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paywall)).Required()
		gt.Bool(t, paywall.Paywall).True()
		gt.String(t, paywall.Message).NotEqual("")
	})

	t.Run("generation failure maps to bad gateway", func(t *testing.T) {
		srv := newTestServer(&textGenStub{
			generate: func(ctx context.Context, req model.GuideRequest) (*model.GuideBody, error) {
				return nil, goerr.New("upstream down")
			},
		})

		rec := postGuide(t, srv, map[string]any{
			"year": "2015", "make": "Honda", "model": "Civic", "task": "replace front brakes", "subject_id": "user-1",
		})
		gt.Number(t, rec.Code).Equal(http.StatusBadGateway)
	})
}

func TestGetGuideEndpoint(t *testing.T) {
	srv := newTestServer(okStub())

	rec := postGuide(t, srv, map[string]any{
		"year": "2015", "make": "Honda", "model": "Civic", "task": "replace front brakes", "subject_id": "user-1",
	})
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	var created struct {
		ID string `json:"id"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created)).Required()

	t.Run("by id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/guides/"+created.ID, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("by fingerprint", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/guides/2015-honda-civic-replace-front-brakes", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			ID string `json:"id"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp.ID).Equal(created.ID)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/guides/2015-honda-civic-nope", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(okStub())

	t.Run("known make", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/catalog/honda", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		var resp map[string]struct {
			Start int `json:"start"`
			End   int `json:"end"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		civic, exists := resp["Civic"]
		gt.Bool(t, exists).True()
		gt.Number(t, civic.Start).Equal(1992)
	})

	t.Run("unknown make", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/catalog/delorean", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("tasks", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		var resp map[string][]string
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Number(t, len(resp["tasks"])).GreaterOrEqual(1)
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(okStub())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Body.String()).Equal("OK")
}
