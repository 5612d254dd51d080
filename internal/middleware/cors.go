package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// corsMaxAge is how long, in seconds, browsers may cache a preflight answer.
const corsMaxAge = 600

// NewCORSHandler returns a middleware that lets the listed browser origins
// call the booking API. Origins are full scheme+host strings without a
// trailing slash.
//
// Browsers may read X-Total-Count on paged listings and Content-Disposition
// on the CSV export.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders: []string{"X-Total-Count", "Content-Disposition"},
		MaxAge:         corsMaxAge,
	})
	return c.Handler
}
