package cache

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const HeaderCache = "X-Cache"

type recordingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware serves GET requests from store and stores successful responses.
// A response rendered across an invalidation of its path is not stored.
// Cache errors degrade to a pass-through.
func Middleware(store Store, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("cache.middleware")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		path, rawQuery := c.Request.URL.Path, c.Request.URL.RawQuery

		entry, err := store.Get(ctx, path, rawQuery)
		if err != nil {
			log.Warn("page cache lookup failed", zap.String("path", path), zap.Error(err))
		}
		if entry != nil {
			c.Header(HeaderCache, "HIT")
			c.Data(entry.Status, entry.ContentType, entry.Body)
			c.Abort()
			return
		}

		c.Header(HeaderCache, "MISS")
		gen, err := store.Generation(ctx, path)
		if err != nil {
			log.Warn("page cache generation lookup failed", zap.String("path", path), zap.Error(err))
			c.Next()
			return
		}

		w := &recordingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		err = store.Set(ctx, path, rawQuery, gen, &Entry{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		})
		if err != nil {
			log.Warn("page cache store failed", zap.String("path", path), zap.Error(err))
		}
	}
}
