package metrics

import "sort"

// StatusBucket is the response count for one endpoint/status code pair.
type StatusBucket struct {
	Endpoint string
	Code     string
	Count    int
}

// FlattenStatusBuckets converts a nested endpoint->status map into rows
// sorted by descending count, then by endpoint and code.
func FlattenStatusBuckets(buckets map[string]map[string]int) []StatusBucket {
	if len(buckets) == 0 {
		return nil
	}
	rows := make([]StatusBucket, 0)
	for endpoint, codes := range buckets {
		for code, count := range codes {
			rows = append(rows, StatusBucket{Endpoint: endpoint, Code: code, Count: count})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			if rows[i].Endpoint == rows[j].Endpoint {
				return rows[i].Code < rows[j].Code
			}
			return rows[i].Endpoint < rows[j].Endpoint
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
