package handlers

import (
	"net/http"
	"strings"
)

// pathParam reads a route parameter, either from pat (stored in the query
// under ":name") or from the net/http mux.
func pathParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	if val := r.URL.Query().Get(":" + name); val != "" {
		return strings.TrimSpace(val)
	}
	return strings.TrimSpace(r.PathValue(name))
}
