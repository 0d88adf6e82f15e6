// Package analytics derives ranked summaries from a flight snapshot. Every
// function is pure: the same input always yields the same output.
package analytics

import (
	"encoding/json"
	"math"
	"sort"
)

// Count is one ranked key. It encodes as a ["name", count] pair.
type Count struct {
	Name  string
	Count int
}

func (c Count) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.Name, c.Count})
}

// Counter counts keys and remembers the order they were first seen in.
type Counter struct {
	index map[string]int
	items []Count
}

func NewCounter() *Counter {
	return &Counter{index: make(map[string]int)}
}

// Add increments key by one.
func (c *Counter) Add(key string) {
	c.AddN(key, 1)
}

// AddN increments key by n.
func (c *Counter) AddN(key string, n int) {
	if i, ok := c.index[key]; ok {
		c.items[i].Count += n
		return
	}
	c.index[key] = len(c.items)
	c.items = append(c.items, Count{Name: key, Count: n})
}

// Get returns the count for key, zero if unseen.
func (c *Counter) Get(key string) int {
	if i, ok := c.index[key]; ok {
		return c.items[i].Count
	}
	return 0
}

// Len is the number of distinct keys.
func (c *Counter) Len() int {
	return len(c.items)
}

// Items returns every key in first-seen order.
func (c *Counter) Items() []Count {
	out := make([]Count, len(c.items))
	copy(out, c.items)
	return out
}

// MostCommon returns the n highest counts, ties kept in first-seen order.
// n <= 0 returns every key.
func (c *Counter) MostCommon(n int) []Count {
	out := c.Items()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Merge returns a new counter holding c's keys then other's new keys, with
// counts summed.
func (c *Counter) Merge(other *Counter) *Counter {
	out := NewCounter()
	for _, item := range c.items {
		out.AddN(item.Name, item.Count)
	}
	for _, item := range other.items {
		out.AddN(item.Name, item.Count)
	}
	return out
}

// MarketShare is count as a percentage of total, rounded to two places.
func MarketShare(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round2(float64(count) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
