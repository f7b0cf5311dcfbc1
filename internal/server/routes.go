package server

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/cdpctl/internal/inspect"
	"github.com/danmuck/cdpctl/internal/protocol/cdp"
)

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": serviceName,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1/cdp")
	v1.POST("/decode", s.handleDecode)
	v1.POST("/encode", s.handleEncode)
}

func errorBody(err error) gin.H {
	return gin.H{"error": err.Error(), "kind": cdp.Kind(err)}
}

// handleDecode accepts raw CDP bytes or hex text holding one or more packets.
func (s *Server) handleDecode(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(body) > maxBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
		return
	}
	if strings.HasPrefix(c.ContentType(), "text/") || inspect.LooksHex(body) {
		body, err = inspect.ReadInput(bytes.NewReader(body), true)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	views, err := inspect.NewDecoder().DecodeStream(bytes.NewReader(body))
	if err != nil {
		resp := errorBody(err)
		resp["packets"] = views
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packets": views, "count": len(views)})
}

// handleEncode returns hex packets, or a raw stream with ?format=raw.
func (s *Server) handleEncode(c *gin.Context) {
	var req inspect.EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	packets, err := s.encoder.Encode(req)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, cdp.ErrPacketTooLong) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, errorBody(err))
		return
	}

	if c.Query("format") == "raw" {
		var buf bytes.Buffer
		if err := inspect.WriteFrames(&buf, packets); err != nil {
			c.JSON(http.StatusInternalServerError, errorBody(err))
			return
		}
		c.Data(http.StatusOK, "application/octet-stream", buf.Bytes())
		return
	}

	out := make([]string, 0, len(packets))
	for _, pkt := range packets {
		out = append(out, hex.EncodeToString(pkt))
	}
	c.JSON(http.StatusOK, gin.H{"packets": out, "count": len(out)})
}
