package server

import "net/http"

// readOnlyMethods are the verbs a demo deployment may serve.
var readOnlyMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// DemoMiddleware keeps demo deployments read-only: anything other than
// GET, HEAD, or OPTIONS gets a 405 before reaching a handler.
func DemoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !readOnlyMethods[r.Method] {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusMethodNotAllowed)
			_, _ = w.Write([]byte(`{"error":"demo mode: read-only access","code":405}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
