package render

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

type wrapResponse struct {
	status int
	header http.Header
	buf    *bytes.Buffer
}

func (w *wrapResponse) Header() http.Header {
	return w.header
}

func (w *wrapResponse) WriteHeader(statusCode int) {
	w.status = statusCode
}

func (w *wrapResponse) Write(data []byte) (int, error) {
	return w.buf.Write(data)
}

func (w *wrapResponse) isJsonContent() bool {
	typ := w.header.Get("Content-Type")
	return strings.HasPrefix(typ, "application/json")
}

type dataResponse struct {
	Data json.RawMessage `json:"data,omitempty"`
}

type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// WrapResponse wrap successful json bodies as {"data": ...}, errors pass through
func WrapResponse(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrap := &wrapResponse{
			status: http.StatusOK,
			header: http.Header{},
			buf:    &bytes.Buffer{},
		}

		next.ServeHTTP(wrap, r)

		for k, v := range wrap.header {
			w.Header()[k] = v
		}

		body := wrap.buf.Bytes()
		if wrap.status < http.StatusMultipleChoices && wrap.isJsonContent() {
			if b, err := json.Marshal(dataResponse{Data: bytes.TrimSpace(body)}); err == nil {
				body = b
			}
		}

		w.WriteHeader(wrap.status)
		_, _ = w.Write(body)
	})
}
