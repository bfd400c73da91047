package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/torosent/formwire/internal/metrics"
)

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, stats metrics.Stats) {
	fmt.Fprintln(w, "\n--- Request Summary ---")
	fmt.Fprintf(w, "Total Requests:    %d\n", stats.Total)
	fmt.Fprintf(w, "Successful:        %d\n", stats.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failures)
	fmt.Fprintf(w, "Bytes Sent:        %s\n", humanize.Bytes(uint64(stats.BytesSent)))
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", stats.RequestsPerSec)
	fmt.Fprintf(w, "Throughput:        %s/s\n", humanize.Bytes(uint64(stats.BytesPerSec)))
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)

	if rows := metrics.FlattenStatusBuckets(stats.StatusBuckets); len(rows) > 0 {
		fmt.Fprintln(w, "\nStatus Codes:")
		for _, row := range rows {
			fmt.Fprintf(w, "  %s %s: %d\n", row.Endpoint, row.Code, row.Count)
		}
	}

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		labels := make([]string, 0, len(stats.Errors))
		for label := range stats.Errors {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(w, "  %s: %d\n", label, stats.Errors[label])
		}
	}

	if len(stats.Endpoints) > 1 {
		fmt.Fprintln(w, "\nEndpoint Breakdown:")
		names := make([]string, 0, len(stats.Endpoints))
		for name := range stats.Endpoints {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if stats.Endpoints[names[i]].Total == stats.Endpoints[names[j]].Total {
				return names[i] < names[j]
			}
			return stats.Endpoints[names[i]].Total > stats.Endpoints[names[j]].Total
		})
		for _, name := range names {
			ep := stats.Endpoints[name]
			fmt.Fprintf(w, "  - %s: total=%d, successes=%d, failures=%d, sent=%s, p99=%s\n",
				name, ep.Total, ep.Successes, ep.Failures, humanize.Bytes(uint64(ep.BytesSent)), ep.P99Latency)
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, stats metrics.Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
