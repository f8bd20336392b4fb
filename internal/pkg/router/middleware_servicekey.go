package router

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// middlewareServiceKey authenticates service-to-service callers with a shared
// key on the Authorization header. Keys are compared as SHA-256 digests so the
// comparison is constant time and does not leak key length.
func middlewareServiceKey(keys []string, publicEndpoints map[string]map[string]struct{}) Middleware {
	digests := make([][32]byte, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		digests = append(digests, sha256.Sum256([]byte(key)))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := matchedRoutePath(r)

			if s, ok := publicEndpoints[r.Method]; ok {
				if _, skip := s[path]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			p := strings.Fields(r.Header.Get("Authorization"))
			if len(p) != 2 || !strings.EqualFold(p[0], "Bearer") {
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			presented := sha256.Sum256([]byte(p[1]))

			authorized := false
			for _, digest := range digests {
				if subtle.ConstantTimeCompare(digest[:], presented[:]) == 1 {
					authorized = true
				}
			}

			if !authorized {
				writeJSON(w, errorResponse{Message: "Invalid service key"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
