package sentiment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nmoreau/tradecore/metrics"
	"github.com/nmoreau/tradecore/news"
)

// ErrCorruptEntry marks a cached sentiment file whose confidence line does
// not parse as a float. Corruption is surfaced, never silently recomputed.
var ErrCorruptEntry = errors.New("sentiment: corrupt cache entry")

// Result is the assembled news sentiment for one lookup.
type Result struct {
	Headlines     []string
	Confidence    float64
	Label         Label
	HeadlineCount int
}

// Cache fetches headlines and their classified sentiment, persisting each
// (symbol, date range, limit) key to disk so it is computed at most once.
//
// An entry is written once and reused forever for that exact key; there is
// no TTL and no eviction. The cache is not safe for concurrent writers to
// the same key, which is fine under the one-process-per-symbol discipline.
type Cache struct {
	dir        string
	symbol     string
	limit      int
	source     news.Source
	classifier *Classifier
}

func NewCache(dir, symbol string, limit int, source news.Source, classifier *Classifier) *Cache {
	return &Cache{
		dir:        dir,
		symbol:     symbol,
		limit:      limit,
		source:     source,
		classifier: classifier,
	}
}

// GetNewsAndSentiment returns the sentiment for the window [from, to],
// serving from disk on a key hit and fetching + classifying on a miss.
func (c *Cache) GetNewsAndSentiment(ctx context.Context, to, from time.Time) (Result, error) {
	path := c.entryPath(to, from)

	if _, err := os.Stat(path); err == nil {
		metrics.SentimentCacheHits.Inc()
		return readEntry(path)
	}
	metrics.SentimentCacheMisses.Inc()

	headlines, err := c.source.GetNews(ctx, c.symbol, from, to, c.limit)
	if err != nil {
		return Result{}, err
	}
	confidence, label, err := c.classifier.Classify(ctx, headlines)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Headlines:     headlines,
		Confidence:    confidence,
		Label:         label,
		HeadlineCount: len(headlines),
	}
	if err := writeEntry(path, res); err != nil {
		return Result{}, err
	}
	return res, nil
}

// entryPath builds the deterministic key location:
// <dir>/<symbol>/sentiment_<symbol>_<from>-<to>_<limit>.txt
func (c *Cache) entryPath(to, from time.Time) string {
	name := fmt.Sprintf("sentiment_%s_%s-%s_%d.txt",
		c.symbol, from.Format("2006-01-02"), to.Format("2006-01-02"), c.limit)
	return filepath.Join(c.dir, c.symbol, name)
}

// Entry format: line 1 confidence, line 2 label, lines 3.. one headline each.
// No version header; format changes are not backward compatible.
func readEntry(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read cache entry %s: %w", path, err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) < 2 {
		return Result{}, fmt.Errorf("%w: %s has %d lines", ErrCorruptEntry, path, len(lines))
	}
	confidence, err := strconv.ParseFloat(strings.TrimSpace(lines[0]), 64)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, path, err)
	}
	headlines := make([]string, 0, len(lines)-2)
	for _, l := range lines[2:] {
		headlines = append(headlines, strings.TrimSpace(l))
	}
	return Result{
		Headlines:     headlines,
		Confidence:    confidence,
		Label:         Label(strings.TrimSpace(lines[1])),
		HeadlineCount: len(headlines),
	}, nil
}

func writeEntry(path string, res Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%g\n%s\n", res.Confidence, res.Label)
	for _, h := range res.Headlines {
		sb.WriteString(h)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write cache entry %s: %w", path, err)
	}
	return nil
}
