package api

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds the CORS policy. Zero-valued lists and MaxAge fall back
// to the defaults below.
type CORSConfig struct {
	Origins          []string // "*" allows any origin
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds a preflight answer may be cached
}

func (c *CORSConfig) loadDefaults() {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 600
	}
}

// corsPolicy is CORSConfig with the header values rendered once.
type corsPolicy struct {
	origins     map[string]bool
	anyOrigin   bool
	methods     string
	headers     string
	credentials bool
	maxAge      string
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	cfg.loadDefaults()
	p := corsPolicy{
		origins:     make(map[string]bool, len(cfg.Origins)),
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		credentials: cfg.AllowCredentials,
		maxAge:      strconv.Itoa(cfg.MaxAge),
	}
	for _, origin := range cfg.Origins {
		if origin == "*" {
			p.anyOrigin = true
		}
		p.origins[origin] = true
	}
	return p
}

// wrap answers preflight requests itself and tags responses for allowed
// origins. Requests from other origins pass through without CORS headers.
func (p corsPolicy) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && (p.anyOrigin || p.origins[origin])
		preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

		if allowed {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if p.credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if preflight {
				h.Set("Access-Control-Allow-Methods", p.methods)
				h.Set("Access-Control-Allow-Headers", p.headers)
				h.Set("Access-Control-Max-Age", p.maxAge)
			}
		}

		if preflight {
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
