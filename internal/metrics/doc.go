// Package metrics aggregates per-request latency, upload volume and failures
// for API calls.
//
//	collector := metrics.NewCollector()
//	collector.RecordRequest(latency, err, &metrics.RequestMetadata{
//		Endpoint:   "images/edits",
//		StatusCode: 200,
//		BytesSent:  1 << 20,
//	})
//	stats := collector.Stats(time.Since(start))
//
// Latency percentiles come from an HDR histogram tracking 1µs to 60s with
// three significant figures. [Stats.StatusBuckets] groups response codes per
// endpoint and [Stats.Errors] groups failures by a readable error label.
//
// A Collector is safe for concurrent use.
package metrics
