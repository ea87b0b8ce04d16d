package sentiment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteModel calls a text-classification inference endpoint (a hosted
// FinBERT, typically). The endpoint takes a batch of inputs and returns,
// per input, a score for each of the three classes.
type RemoteModel struct {
	client *resty.Client
}

// NewRemoteModel builds a client for the given inference URL. An auth token
// is optional; pass "" when the endpoint is unauthenticated.
func NewRemoteModel(url, token string) *RemoteModel {
	client := resty.New().
		SetBaseURL(url).
		SetTimeout(60 * time.Second)
	if token != "" {
		client.SetAuthToken(token)
	}
	return &RemoteModel{client: client}
}

type inferenceRequest struct {
	Inputs []string `json:"inputs"`
}

type classScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Scores implements Model. The response order within each row is normalized
// to [positive, negative, neutral] regardless of the endpoint's ordering.
func (m *RemoteModel) Scores(ctx context.Context, headlines []string) ([][]float64, error) {
	var raw [][]classScore
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(inferenceRequest{Inputs: headlines}).
		SetResult(&raw).
		Post("")
	if err != nil {
		return nil, fmt.Errorf("sentiment inference: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("sentiment inference error %d: %s", resp.StatusCode(), resp.String())
	}
	out := make([][]float64, len(raw))
	for i, row := range raw {
		scores := make([]float64, len(labels))
		for _, cs := range row {
			for j, lbl := range labels {
				if Label(cs.Label) == lbl {
					scores[j] = cs.Score
				}
			}
		}
		out[i] = scores
	}
	return out, nil
}
