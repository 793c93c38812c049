package httpinfra

import "net/http"

// MergeHeaders returns base overlaid with extra; extra wins on conflicts.
func MergeHeaders(base map[string]string, extra http.Header) http.Header {
	out := make(http.Header, len(base)+len(extra))
	for k, v := range base {
		out.Set(k, v)
	}
	for k, vs := range extra {
		out.Del(k)
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}
