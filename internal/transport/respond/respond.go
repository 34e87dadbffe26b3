// Package respond writes JSON responses with a fixed UTF-8 content type.
package respond

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// ContentTypeJSON is sent with every JSON response
const ContentTypeJSON = "application/json; charset=utf-8"

// JSON encodes body and writes it with status 200 unless told otherwise.
// A body implementing render.Renderer is rendered first and may pick the status
// through render.Status; an explicit status argument always wins.
func JSON(w http.ResponseWriter, r *http.Request, body interface{}, status ...int) {
	if rd, ok := body.(render.Renderer); ok {
		if err := rd.Render(w, r); err != nil {
			body = map[string]string{"error": err.Error()}
			status = []int{http.StatusInternalServerError}
		}
	}

	code := http.StatusOK
	if s, ok := r.Context().Value(render.StatusCtxKey).(int); ok {
		code = s
	}
	if len(status) > 0 {
		code = status[0]
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		buf.Reset()
		code = http.StatusInternalServerError
		_ = json.NewEncoder(buf).Encode(map[string]string{"error": err.Error()})
	}

	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
