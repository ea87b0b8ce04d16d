package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
)

func testModel(t *testing.T, handler http.HandlerFunc) *RemoteModel {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &RemoteModel{client: resty.New().SetBaseURL(srv.URL)}
}

func TestRemoteScoresNormalizesLabelOrder(t *testing.T) {
	m := testModel(t, func(w http.ResponseWriter, r *http.Request) {
		var req inferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Inputs) != 2 {
			t.Errorf("expected 2 inputs, got %d", len(req.Inputs))
		}
		// The endpoint reports classes in its own order.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			[{"label":"neutral","score":0.1},{"label":"positive","score":0.7},{"label":"negative","score":0.2}],
			[{"label":"negative","score":0.8},{"label":"neutral","score":0.15},{"label":"positive","score":0.05}]
		]`))
	})

	scores, err := m.Scores(context.Background(), []string{"up", "down"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(scores))
	}
	// Rows must come back as [positive, negative, neutral].
	if scores[0][0] != 0.7 || scores[0][1] != 0.2 || scores[0][2] != 0.1 {
		t.Fatalf("row 0 not normalized: %v", scores[0])
	}
	if scores[1][0] != 0.05 || scores[1][1] != 0.8 || scores[1][2] != 0.15 {
		t.Fatalf("row 1 not normalized: %v", scores[1])
	}
}

func TestRemoteScoresHTTPError(t *testing.T) {
	m := testModel(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model loading"}`, http.StatusServiceUnavailable)
	})
	if _, err := m.Scores(context.Background(), []string{"x"}); err == nil {
		t.Fatalf("expected an error on a non-200 response")
	}
}
