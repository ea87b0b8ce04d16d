// Package sentiment classifies news headlines and caches the result per
// (symbol, date range, limit) key.
package sentiment

import (
	"context"
	"math"
)

// Label is the classifier's categorical output.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// labels indexes the model's score columns.
var labels = []Label{Positive, Negative, Neutral}

// Model scores a batch of headlines. For each headline it returns raw class
// scores ordered [positive, negative, neutral]. The model is an external
// dependency: it is constructed once at startup and passed in by reference.
type Model interface {
	Scores(ctx context.Context, headlines []string) ([][]float64, error)
}

// Classifier turns per-headline model scores into one aggregate
// (confidence, label) pair for the whole batch.
type Classifier struct {
	model Model
}

func NewClassifier(model Model) *Classifier {
	return &Classifier{model: model}
}

// Classify sums the raw class scores across the batch, normalizes the sums
// to a probability distribution and returns the argmax class with its
// probability. This is a single decision over the whole batch, not a vote:
// one strong headline can dominate many low-signal ones.
//
// An empty batch is a defined edge case, not an error: (0, neutral).
func (c *Classifier) Classify(ctx context.Context, headlines []string) (float64, Label, error) {
	if len(headlines) == 0 {
		return 0, Neutral, nil
	}
	scores, err := c.model.Scores(ctx, headlines)
	if err != nil {
		return 0, Neutral, err
	}
	var sums [3]float64
	for _, row := range scores {
		for i := 0; i < len(sums) && i < len(row); i++ {
			sums[i] += row[i]
		}
	}
	probs := softmax(sums[:])
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return probs[best], labels[best], nil
}

// softmax with max subtraction for numerical stability.
func softmax(x []float64) []float64 {
	max := x[0]
	for _, v := range x[1:] {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(x))
	var total float64
	for i, v := range x {
		out[i] = math.Exp(v - max)
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
	return out
}
