package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware. Empty lists take the defaults.
type CORSConfig struct {
	// AllowedOrigins may contain "*" to allow any origin. Default: ["*"].
	AllowedOrigins []string

	// AllowedMethods default to GET, POST and OPTIONS.
	AllowedMethods []string

	// AllowedHeaders default to Content-Type and Authorization.
	AllowedHeaders []string

	// ExposedHeaders are readable by the client. Default: none.
	ExposedHeaders []string

	AllowCredentials bool

	// MaxAge is how long, in seconds, a preflight result may be cached.
	MaxAge int
}

// DefaultCORSConfig allows any origin for the methods the rpc package serves.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
}

// CORS returns an HTTP middleware that answers preflight requests and sets
// CORS headers on allowed origins. A nil cfg uses DefaultCORSConfig.
func CORS(cfg *CORSConfig) func(http.Handler) http.Handler {
	def := DefaultCORSConfig()
	if cfg == nil {
		cfg = def
	}
	origins := orDefault(cfg.AllowedOrigins, def.AllowedOrigins)
	methods := strings.Join(orDefault(cfg.AllowedMethods, def.AllowedMethods), ", ")
	headers := strings.Join(orDefault(cfg.AllowedHeaders, def.AllowedHeaders), ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")
	wildcard := slices.Contains(origins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			if wildcard || (origin != "" && slices.Contains(origins, origin)) {
				if origin != "" && (!wildcard || cfg.AllowCredentials) {
					// Credentials forbid "*", so echo the origin back.
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				} else {
					h.Set("Access-Control-Allow-Origin", "*")
				}
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if exposed != "" {
					h.Set("Access-Control-Expose-Headers", exposed)
				}
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
