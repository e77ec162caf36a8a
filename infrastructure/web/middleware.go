package web

import (
	"context"
	"net/http"
	"slices"
)

// wrap applies middleware so that the first one listed runs outermost.
func wrap(handler HandlerFunc, middleware ...Middleware) HandlerFunc {
	for _, mw := range slices.Backward(middleware) {
		handler = mw(handler)
	}
	return handler
}

const (
	corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Accept, Content-Type"
)

// cors sets the CORS headers for allowed origins and answers preflight
// requests without reaching the route.
func cors(origins []string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, r *http.Request) Encoder {
			w := GetWriter(ctx)
			if allowed := allowOrigin(origins, r.Header.Get("Origin")); allowed != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", allowed)
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", "86400")
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				return nil
			}
			return next(ctx, r)
		}
	}
}

func allowOrigin(origins []string, origin string) string {
	for _, o := range origins {
		if o == "*" {
			return "*"
		}
		if origin != "" && o == origin {
			return origin
		}
	}
	return ""
}
