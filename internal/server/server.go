package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/nerbatch/internal/annotations"
)

// Server renders annotated documents with their entities highlighted.
type Server struct {
	Docs   []annotations.Document
	Colors map[string]string

	logger *zap.Logger
}

func NewServer(docs []annotations.Document, colors map[string]string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Docs: docs, Colors: colors, logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.SetHTMLTemplate(pageTemplate)

	r.GET("/", s.Page)
	r.GET("/api/annotations", s.List)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

type viewSegment struct {
	Text  string
	Label string
	Style template.CSS
}

type viewDoc struct {
	Title    string
	Segments []viewSegment
}

func (s *Server) Page(c *gin.Context) {
	docs := make([]viewDoc, 0, len(s.Docs))
	for _, d := range s.Docs {
		vd := viewDoc{Title: d.Title}
		for _, seg := range annotations.Segments(d) {
			vs := viewSegment{Text: seg.Text, Label: seg.Label}
			if seg.Label != "" {
				color, ok := s.Colors[seg.Label]
				if !ok {
					color = "#ddd"
				}
				vs.Style = template.CSS("background: " + color)
			}
			vd.Segments = append(vd.Segments, vs)
		}
		docs = append(docs, vd)
	}
	c.HTML(http.StatusOK, "page", gin.H{"Docs": docs})
}

func (s *Server) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"documents": s.Docs, "colors": s.Colors})
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Annotations</title>
<style>
body { font-family: sans-serif; margin: 2em; line-height: 2.4; }
mark { padding: 0.3em 0.5em; border-radius: 0.35em; }
mark span { font-size: 0.7em; font-weight: bold; margin-left: 0.5em; text-transform: uppercase; }
hr { margin: 2em 0; }
</style>
</head>
<body>
{{range .Docs}}<h3>Annotations for file: {{.Title}}</h3>
<div class="doc">{{range .Segments}}{{if .Label}}<mark class="entity" style="{{.Style}}">{{.Text}}<span>{{.Label}}</span></mark>{{else}}{{.Text}}{{end}}{{end}}</div>
<hr>
{{end}}</body>
</html>
`))
