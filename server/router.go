// Package server exposes a running simulation over HTTP, server-sent events,
// websockets and the gRPC health protocol.
package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"

	"pursuit/render"
	"pursuit/shared"
)

// Source is the simulation as seen by the HTTP handlers
type Source interface {
	Status() shared.RunStatus
}

// NewRouter builds the HTTP API
func NewRouter(src Source, hub *Hub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, src.Status())
	})
	router.GET("/board", func(c *gin.Context) {
		boardHandler(c, src)
	})
	router.GET("/events", hub.ServeSSE)
	router.GET("/ws", func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	})
	return router
}

// CORSMiddleware lets browser viewers on other origins read the API
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Encoding, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// boardHandler serves the text board, brotli-compressed when the client
// accepts it.
func boardHandler(c *gin.Context, src Source) {
	st := src.Status()
	body := render.String(st.Board)
	if st.Message != "" {
		body += st.Message + "\n"
	}

	c.Header("Vary", "Accept-Encoding")
	if !acceptsBrotli(c.GetHeader("Accept-Encoding")) {
		c.String(http.StatusOK, body)
		return
	}

	c.Header("Content-Encoding", "br")
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	bw := brotli.NewWriter(c.Writer)
	if _, err := bw.Write([]byte(body)); err != nil {
		c.Error(err)
		return
	}
	if err := bw.Close(); err != nil {
		c.Error(err)
	}
}

func acceptsBrotli(header string) bool {
	for _, part := range strings.Split(header, ",") {
		enc, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.TrimSpace(enc) != "br" {
			continue
		}
		return strings.ReplaceAll(params, " ", "") != "q=0"
	}
	return false
}

// ServeSSE streams cycle events as server-sent events until the client leaves
// or the hub closes.
func (h *Hub) ServeSSE(c *gin.Context) {
	cl := h.register("sse:" + c.Request.RemoteAddr)
	defer h.unregister(cl)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-cl.send:
			if !ok {
				return false
			}
			c.SSEvent("cycle", string(msg))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
