package metrics

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// RequestMetadata describes one finished request.
type RequestMetadata struct {
	Endpoint   string
	StatusCode int
	BytesSent  int64
}

// Collector records per-request metrics in a thread-safe manner.
type Collector struct {
	mu           sync.Mutex
	hist         *hdrhistogram.Histogram
	successes    int64
	failures     int64
	bytesSent    int64
	minLatency   time.Duration
	maxLatency   time.Duration
	sumLatency   time.Duration
	errorsByType map[string]int64
	endpoints    map[string]*endpointBucket
	statuses     map[string]map[string]int
}

type endpointBucket struct {
	successes int64
	failures  int64
	bytesSent int64
	hist      *hdrhistogram.Histogram
}

// Stats represents aggregated metrics.
type Stats struct {
	Total          int64         `json:"total"`
	Successes      int64         `json:"successes"`
	Failures       int64         `json:"failures"`
	BytesSent      int64         `json:"bytes_sent"`
	MinLatency     time.Duration `json:"-"`
	MaxLatency     time.Duration `json:"-"`
	MeanLatency    time.Duration `json:"-"`
	P50Latency     time.Duration `json:"-"`
	P90Latency     time.Duration `json:"-"`
	P99Latency     time.Duration `json:"-"`
	Duration       time.Duration `json:"-"`
	RequestsPerSec float64       `json:"requests_per_sec"`
	BytesPerSec    float64       `json:"bytes_per_sec"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64 `json:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms"`
	DurationMs    float64 `json:"duration_ms"`

	Errors        map[string]int            `json:"errors,omitempty"`
	StatusBuckets map[string]map[string]int `json:"status_buckets,omitempty"`
	Endpoints     map[string]EndpointStats  `json:"endpoints,omitempty"`
}

// EndpointStats is the per-endpoint slice of Stats.
type EndpointStats struct {
	Total        int64         `json:"total"`
	Successes    int64         `json:"successes"`
	Failures     int64         `json:"failures"`
	BytesSent    int64         `json:"bytes_sent"`
	P99Latency   time.Duration `json:"-"`
	P99LatencyMs float64       `json:"p99_latency_ms"`
}

func NewCollector() *Collector {
	return &Collector{
		hist:         newHistogram(),
		errorsByType: make(map[string]int64),
		endpoints:    make(map[string]*endpointBucket),
		statuses:     make(map[string]map[string]int),
	}
}

// Track latencies from 1µs up to 60s with 3 significant figures.
func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, 60_000_000, 3)
}

func recordLatency(h *hdrhistogram.Histogram, latency time.Duration) {
	if latency <= 0 {
		return
	}
	us := latency.Microseconds()
	if us < h.LowestTrackableValue() {
		us = h.LowestTrackableValue()
	}
	if us > h.HighestTrackableValue() {
		us = h.HighestTrackableValue()
	}
	_ = h.RecordValue(us)
}

// RecordRequest records a single request's latency and error state. meta may
// be nil.
func (c *Collector) RecordRequest(latency time.Duration, err error, meta *RequestMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recordLatency(c.hist, latency)
	c.sumLatency += latency

	if c.minLatency == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}

	if err == nil {
		c.successes++
	} else {
		c.failures++
		c.errorsByType[FriendlyErrorName(fmt.Sprintf("%T", err))]++
	}

	if meta == nil {
		return
	}
	c.bytesSent += meta.BytesSent

	if meta.Endpoint != "" {
		bucket, ok := c.endpoints[meta.Endpoint]
		if !ok {
			bucket = &endpointBucket{hist: newHistogram()}
			c.endpoints[meta.Endpoint] = bucket
		}
		if err == nil {
			bucket.successes++
		} else {
			bucket.failures++
		}
		bucket.bytesSent += meta.BytesSent
		recordLatency(bucket.hist, latency)
	}

	if meta.StatusCode > 0 {
		endpoint := meta.Endpoint
		if endpoint == "" {
			endpoint = "unknown"
		}
		codes, ok := c.statuses[endpoint]
		if !ok {
			codes = make(map[string]int)
			c.statuses[endpoint] = codes
		}
		codes[strconv.Itoa(meta.StatusCode)]++
	}
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	stats := Stats{
		Total:      total,
		Successes:  c.successes,
		Failures:   c.failures,
		BytesSent:  c.bytesSent,
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
	}

	if total > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / total)
	}

	if c.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.MinLatencyMs = millis(stats.MinLatency)
	stats.MaxLatencyMs = millis(stats.MaxLatency)
	stats.MeanLatencyMs = millis(stats.MeanLatency)
	stats.P50LatencyMs = millis(stats.P50Latency)
	stats.P90LatencyMs = millis(stats.P90Latency)
	stats.P99LatencyMs = millis(stats.P99Latency)

	stats.Duration = elapsed
	stats.DurationMs = millis(elapsed)
	if elapsed > 0 {
		if total > 0 {
			stats.RequestsPerSec = float64(total) / elapsed.Seconds()
		}
		stats.BytesPerSec = float64(c.bytesSent) / elapsed.Seconds()
	}

	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = int(v)
		}
	}

	if len(c.statuses) > 0 {
		stats.StatusBuckets = make(map[string]map[string]int, len(c.statuses))
		for endpoint, codes := range c.statuses {
			copied := make(map[string]int, len(codes))
			for code, n := range codes {
				copied[code] = n
			}
			stats.StatusBuckets[endpoint] = copied
		}
	}

	if len(c.endpoints) > 0 {
		stats.Endpoints = make(map[string]EndpointStats, len(c.endpoints))
		for name, bucket := range c.endpoints {
			ep := EndpointStats{
				Total:     bucket.successes + bucket.failures,
				Successes: bucket.successes,
				Failures:  bucket.failures,
				BytesSent: bucket.bytesSent,
			}
			if bucket.hist.TotalCount() > 0 {
				ep.P99Latency = time.Duration(bucket.hist.ValueAtQuantile(99)) * time.Microsecond
				ep.P99LatencyMs = millis(ep.P99Latency)
			}
			stats.Endpoints[name] = ep
		}
	}

	return stats
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
