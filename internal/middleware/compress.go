package middleware

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// NewCompressHandler returns a middleware that gzips responses for clients
// sending Accept-Encoding: gzip. Bodies under gzhttp's default minimum size
// are sent as-is, so small JSON errors stay uncompressed.
func NewCompressHandler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return gzhttp.GzipHandler(next)
	}
}
