// Package metrics keeps in-process counters for the editor and serves them
// in the Prometheus text exposition format.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

const namespace = "resume_builder"

// family is one named metric that can write its samples.
type family interface {
	writeTo(w io.Writer, name string)
}

// Registry renders a fixed, ordered set of metric families.
type Registry struct {
	mu    sync.Mutex
	names []string
	help  map[string]string
	kinds map[string]string
	fams  map[string]family
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{help: map[string]string{}, kinds: map[string]string{}, fams: map[string]family{}}
}

func (r *Registry) register(name, kind, help string, f family) {
	r.mu.Lock()
	defer r.mu.Unlock()
	full := namespace + "_" + name
	if _, dup := r.fams[full]; dup {
		panic("metrics: duplicate family " + full)
	}
	r.names = append(r.names, full)
	r.help[full], r.kinds[full], r.fams[full] = help, kind, f
}

// Counter registers a counter partitioned by one label.
func (r *Registry) Counter(name, help, label string) *CounterVec {
	v := &CounterVec{label: label, values: map[string]*atomic.Uint64{}}
	r.register(name, "counter", help, v)
	return v
}

// Gauge registers an unlabelled gauge.
func (r *Registry) Gauge(name, help string) *Gauge {
	g := &Gauge{}
	r.register(name, "gauge", help, g)
	return g
}

// Histogram registers a histogram with the given upper bounds.
func (r *Registry) Histogram(name, help string, bounds ...float64) *Histogram {
	h := &Histogram{bounds: append([]float64(nil), bounds...), counts: make([]uint64, len(bounds))}
	sort.Float64s(h.bounds)
	r.register(name, "histogram", help, h)
	return h
}

// WriteTo renders every family in registration order.
func (r *Registry) WriteTo(w io.Writer) {
	r.mu.Lock()
	names := append([]string(nil), r.names...)
	r.mu.Unlock()
	for _, name := range names {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, r.help[name], name, r.kinds[name])
		r.fams[name].writeTo(w, name)
	}
}

// Handler serves the registry.
func (r *Registry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		c.Status(http.StatusOK)
		r.WriteTo(c.Writer)
	}
}

// CounterVec is a monotonically increasing count per label value.
type CounterVec struct {
	label  string
	mu     sync.Mutex
	values map[string]*atomic.Uint64
}

// Inc adds one to the count for value.
func (v *CounterVec) Inc(value string) {
	v.mu.Lock()
	c, ok := v.values[value]
	if !ok {
		c = new(atomic.Uint64)
		v.values[value] = c
	}
	v.mu.Unlock()
	c.Add(1)
}

// Value returns the current count for value.
func (v *CounterVec) Value(value string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if c, ok := v.values[value]; ok {
		return c.Load()
	}
	return 0
}

func (v *CounterVec) writeTo(w io.Writer, name string) {
	v.mu.Lock()
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	v.mu.Unlock()
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s{%s=%q} %d\n", name, v.label, k, v.Value(k))
	}
}

// Gauge holds a value that can go up and down.
type Gauge struct {
	v atomic.Int64
}

func (g *Gauge) Set(n int64) { g.v.Store(n) }
func (g *Gauge) Value() int64 { return g.v.Load() }

func (g *Gauge) writeTo(w io.Writer, name string) {
	fmt.Fprintf(w, "%s %d\n", name, g.v.Load())
}

// Histogram counts observations into cumulative buckets.
type Histogram struct {
	mu     sync.Mutex
	bounds []float64
	counts []uint64
	sum    float64
	total  uint64
}

// Observe records one value. Negative values are recorded as zero.
func (h *Histogram) Observe(value float64) {
	if value < 0 {
		value = 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.total++
	h.sum += value
	if i := sort.SearchFloat64s(h.bounds, value); i < len(h.bounds) {
		h.counts[i]++
	}
}

func (h *Histogram) writeTo(w io.Writer, name string) {
	h.mu.Lock()
	counts := append([]uint64(nil), h.counts...)
	sum, total := h.sum, h.total
	h.mu.Unlock()

	var cumulative uint64
	for i, bound := range h.bounds {
		cumulative += counts[i]
		fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n%s_sum %s\n%s_count %d\n", name, total, name, formatFloat(sum), name, total)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
