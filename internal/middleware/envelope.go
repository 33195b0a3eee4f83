package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// successEnvelope is the body shape when API_ENVELOPE is on.
type successEnvelope struct {
	Exito  bool            `json:"exito"`
	Codigo int             `json:"codigo"`
	Data   json.RawMessage `json:"data"`
}

// bufferedWriter holds the handler's output until the envelope decides how
// to emit it.
type bufferedWriter struct {
	gin.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bufferedWriter) WriteHeader(code int) { w.status = code }
func (w *bufferedWriter) WriteHeaderNow() {}
func (w *bufferedWriter) Write(b []byte) (int, error) { return w.buf.Write(b) }
func (w *bufferedWriter) WriteString(s string) (int, error) { return w.buf.WriteString(s) }
func (w *bufferedWriter) Status() int { return w.status }
func (w *bufferedWriter) Written() bool { return w.buf.Len() > 0 }
func (w *bufferedWriter) Size() int {
	if w.buf.Len() == 0 {
		return -1
	}
	return w.buf.Len()
}

// SuccessEnvelope wraps 2xx JSON bodies as {exito:true, codigo, data}.
// Errors, empty bodies and non-JSON payloads (PDF downloads) pass through.
func SuccessEnvelope() gin.HandlerFunc {
	return func(c *gin.Context) {
		orig := c.Writer
		bw := &bufferedWriter{ResponseWriter: orig, status: http.StatusOK}
		c.Writer = bw
		defer func() { c.Writer = orig }()

		c.Next()
		c.Writer = orig

		body := bw.buf.Bytes()
		isJSON := strings.HasPrefix(orig.Header().Get("Content-Type"), "application/json")
		if bw.status >= 200 && bw.status < 300 && isJSON && len(body) > 0 {
			wrapped, err := json.Marshal(successEnvelope{Exito: true, Codigo: bw.status, Data: body})
			if err == nil {
				body = wrapped
			}
		}
		orig.WriteHeader(bw.status)
		if len(body) > 0 {
			_, _ = orig.Write(body)
		}
	}
}
