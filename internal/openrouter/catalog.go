package openrouter

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// catalogTTL is how long a fetched model catalog stays fresh.
const catalogTTL = time.Hour

// catalogCache holds the indexed model catalog with an optional disk mirror.
// Disk reads and writes are best-effort; they never fail a caller.
type catalogCache struct {
	path string

	mu     sync.Mutex
	models map[string]map[string]any
	at     time.Time
}

// persistedCatalog is the on-disk shape: the fetch timestamp plus the raw
// model list as returned by the API.
type persistedCatalog struct {
	Timestamp string           `json:"timestamp"`
	Data      []map[string]any `json:"data"`
}

func (cc *catalogCache) loadFromDisk() {
	if cc.path == "" {
		return
	}
	data, err := os.ReadFile(cc.path)
	if err != nil {
		return
	}

	var stored persistedCatalog
	if err := json.Unmarshal(data, &stored); err != nil {
		return
	}
	if stored.Timestamp == "" || len(stored.Data) == 0 {
		return
	}
	at, err := time.Parse(time.RFC3339, stored.Timestamp)
	if err != nil {
		return
	}

	indexed := indexModels(stored.Data)
	if len(indexed) == 0 {
		return
	}

	cc.mu.Lock()
	cc.models = indexed
	cc.at = at
	cc.mu.Unlock()
}

func (cc *catalogCache) store(models []map[string]any, at time.Time) map[string]map[string]any {
	indexed := indexModels(models)

	cc.mu.Lock()
	cc.models = indexed
	cc.at = at
	cc.mu.Unlock()

	if cc.path != "" {
		payload := persistedCatalog{Timestamp: at.UTC().Format(time.RFC3339), Data: models}
		if data, err := json.MarshalIndent(payload, "", "  "); err == nil {
			if err := os.MkdirAll(filepath.Dir(cc.path), 0o755); err == nil {
				_ = os.WriteFile(cc.path, data, 0o644)
			}
		}
	}
	return indexed
}

func (cc *catalogCache) fresh(now time.Time) (map[string]map[string]any, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.models == nil || cc.at.IsZero() || now.Sub(cc.at) >= catalogTTL {
		return nil, false
	}
	return cc.models, true
}

func indexModels(models []map[string]any) map[string]map[string]any {
	indexed := make(map[string]map[string]any, len(models))
	for _, m := range models {
		if id, ok := m["id"].(string); ok && id != "" {
			indexed[id] = m
		}
	}
	return indexed
}

// ModelCatalog returns model metadata indexed by id, refreshing from the API
// when the in-memory copy is older than an hour or forceRefresh is set.
func (c *Client) ModelCatalog(ctx context.Context, forceRefresh bool) (map[string]map[string]any, error) {
	if !forceRefresh {
		if models, ok := c.catalog.fresh(c.now()); ok {
			return models, nil
		}
	}

	data, err := c.requestWithRetries(ctx, "GET", "/models", nil)
	if err != nil {
		return nil, err
	}

	rawList, ok := data["data"].([]any)
	if !ok {
		return nil, badResponse("models endpoint returned unexpected payload")
	}
	models := make([]map[string]any, 0, len(rawList))
	for _, item := range rawList {
		if m, ok := item.(map[string]any); ok {
			models = append(models, m)
		}
	}

	return c.catalog.store(models, c.now()), nil
}

// EstimateCost computes a USD estimate for a completion from the model's
// pricing metadata (price per 1000 tokens). It returns nil when the model is
// unknown or neither pricing component is usable; each component is rounded
// to 6 decimal places and summed into "total".
func (c *Client) EstimateCost(ctx context.Context, model string, usage map[string]any) (map[string]float64, error) {
	catalog, err := c.ModelCatalog(ctx, false)
	if err != nil {
		return nil, err
	}

	info, ok := catalog[model]
	if !ok {
		return nil, nil
	}
	pricing, ok := info["pricing"].(map[string]any)
	if !ok {
		return nil, nil
	}

	promptCost := costComponent(pricing["prompt"], usage["prompt_tokens"])
	completionCost := costComponent(pricing["completion"], usage["completion_tokens"])
	if promptCost == nil && completionCost == nil {
		return nil, nil
	}

	components := map[string]float64{}
	total := 0.0
	if promptCost != nil {
		components["prompt"] = *promptCost
		total += *promptCost
	}
	if completionCost != nil {
		components["completion"] = *completionCost
		total += *completionCost
	}
	components["total"] = total
	return components, nil
}

// costComponent multiplies a per-1k-token price by a token count, rounding to
// 6 decimals. Unparseable or non-finite inputs yield nil.
func costComponent(pricePer1k, tokens any) *float64 {
	price, ok := toFloat(pricePer1k)
	if !ok {
		return nil
	}
	count, ok := toFloat(tokens)
	if !ok {
		return nil
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || math.IsNaN(count) || math.IsInf(count, 0) {
		return nil
	}
	cost := math.Round((price/1000.0)*count*1e6) / 1e6
	return &cost
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
