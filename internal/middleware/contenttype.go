package middleware

import (
	"mime"
	"net/http"
)

// ContentType requires a JSON body on POST, PUT and PATCH requests that carry one
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			next.ServeHTTP(w, r)
			return
		}
		// POST /tasks/{id}/complete has no body
		if r.ContentLength == 0 && r.Header.Get("Content-Type") == "" {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			respondErrorJSON(w, r, http.StatusBadRequest, "Content-Type header is required", nil)
			return
		}
		if mediaType != "application/json" {
			respondErrorJSON(w, r, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
