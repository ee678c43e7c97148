package devserver

import (
	"bytes"
	"net/http"
	"path"
	"strconv"
	"strings"
)

const (
	scriptTag = `<script async src="/livereload.js"></script>`
	// Pages larger than this are served without the client script.
	maxInjectSize = 512 * 1024
)

// injectLiveReload inserts the live-reload client before the last </body> of
// HTML pages served by next.
func injectLiveReload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch path.Ext(r.URL.Path) {
		case "", ".html", ".htm":
		default:
			next.ServeHTTP(w, r)
			return
		}
		// A partial body cannot be rewritten, so pages are always served whole.
		if r.Header.Get("Range") != "" {
			r = r.Clone(r.Context())
			r.Header.Del("Range")
			r.Header.Del("If-Range")
		}
		rw := &injectingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		rw.flush()
	})
}

// injectingWriter holds back an HTML body until the handler returns. It
// switches to streaming as soon as the body turns out not to be HTML or grows
// past maxInjectSize.
type injectingWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	decided   bool // whether the body kind has been checked
	streaming bool
	sent      bool // header written downstream
}

func (w *injectingWriter) WriteHeader(code int) {
	w.status = code
	if w.streaming {
		w.sendHeader()
	}
}

func (w *injectingWriter) sendHeader() {
	if w.sent {
		return
	}
	w.sent = true
	w.ResponseWriter.WriteHeader(w.status)
}

// stream stops buffering and forwards what was held back.
func (w *injectingWriter) stream() error {
	w.streaming = true
	w.Header().Del("Content-Length")
	w.sendHeader()
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

func (w *injectingWriter) Write(p []byte) (int, error) {
	if !w.decided {
		w.decided = true
		if ct := w.Header().Get("Content-Type"); ct != "" && !isHTML(ct) {
			w.streaming = true
			w.sendHeader()
		}
	}
	if !w.streaming && w.buf.Len()+len(p) > maxInjectSize {
		if err := w.stream(); err != nil {
			return 0, err
		}
	}
	if w.streaming {
		return w.ResponseWriter.Write(p)
	}
	return w.buf.Write(p)
}

func (w *injectingWriter) flush() {
	if w.streaming {
		w.sendHeader()
		return
	}
	body := w.buf.Bytes()
	if i := bytes.LastIndex(body, []byte("</body>")); i >= 0 {
		body = bytes.Join([][]byte{body[:i], []byte(scriptTag), body[i:]}, nil)
	}
	if len(body) > 0 {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	}
	w.sendHeader()
	_, _ = w.ResponseWriter.Write(body)
}

func isHTML(contentType string) bool {
	return strings.HasPrefix(contentType, "text/html")
}
