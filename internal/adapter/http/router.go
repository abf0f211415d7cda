package http

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/couchcryptid/noise-dashboard/internal/pipeline"
	"github.com/gin-gonic/gin"
)

func (s *Server) routes(r *gin.Engine) {
	r.GET(PageHome.Path(), s.handleHome)
	r.GET(PageMap.Path(), s.handleMap)
	r.POST(PageMap.Path(), s.handleMap)
	r.GET(PageHeatmap.Path(), s.handleHeatmap)
	r.POST(PageHeatmap.Path(), s.handleHeatmap)
	r.GET(PageCharts.Path(), s.handleCharts)
	r.GET(PageCharts.Path()+"/widgets", s.handleChartWidgets)
	r.GET(PageCities.Path(), s.handleCities)
	r.GET(PageDatasets.Path(), s.handleDatasets)
	r.POST(PageDatasets.Path(), s.handleDatasets)

	if s.opts.AssetsDir != "" {
		r.Static("/assets", s.opts.AssetsDir)
	}
}

// render writes a page. Only template failures produce a non-200 status.
func (s *Server) render(c *gin.Context, p Page, data any) {
	body, err := s.pages.render(p, data)
	if err != nil {
		s.logger.Error("page render failed", "page", p.String(), "error", err)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	s.metrics.PageRenders.WithLabelValues(p.String()).Inc()
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// readForm parses a posted form, counting uploads refused for size.
func (s *Server) readForm(c *gin.Context, flow string) error {
	err := s.parseUploadForm(c)
	if errors.Is(err, errTooLarge) {
		s.metrics.Uploads.WithLabelValues(flow, "too_large").Inc()
	}
	if err != nil {
		s.logger.Info("form rejected", "flow", flow, "error", err)
	}
	return err
}

func (s *Server) handleHome(c *gin.Context) {
	s.render(c, PageHome, nil)
}

func (s *Server) handleHeatmap(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Request.Method != http.MethodPost {
		s.render(c, PageHeatmap, s.dashboard.Heatmap(ctx, nil))
		return
	}
	if err := s.readForm(c, pipeline.FlowHeatmap); err != nil {
		s.render(c, PageHeatmap, pipeline.HeatmapResult{Pass: rejectedPass(err)})
		return
	}
	up, err := formUpload(c, fieldFile)
	if err != nil {
		s.render(c, PageHeatmap, pipeline.HeatmapResult{Pass: rejectedPass(err)})
		return
	}
	s.render(c, PageHeatmap, s.dashboard.Heatmap(ctx, up))
}

func (s *Server) handleMap(c *gin.Context) {
	ctx := c.Request.Context()
	in := pipeline.MapInput{Controls: pipeline.DefaultMapControls()}
	if c.Request.Method != http.MethodPost {
		s.render(c, PageMap, s.dashboard.Map(ctx, in))
		return
	}
	if err := s.readForm(c, pipeline.FlowOverlay); err != nil {
		res := s.dashboard.Map(ctx, in)
		prependNotice(&res.Pass, rejectedPass(err).Notices...)
		s.render(c, PageMap, res)
		return
	}

	var form mapForm
	bindErr := c.ShouldBind(&form)
	if bindErr == nil {
		in.Controls = form.controls()
	} else {
		s.logger.Info("map controls rejected", "error", bindErr)
	}

	var uploadErrs []pipeline.Notice
	var err error
	if in.Boundary, err = formUpload(c, fieldBoundary); err != nil {
		uploadErrs = append(uploadErrs, rejectedPass(err).Notices...)
	}
	if in.CSV, err = formUpload(c, fieldCSV); err != nil {
		uploadErrs = append(uploadErrs, rejectedPass(err).Notices...)
	}

	res := s.dashboard.Map(ctx, in)
	prependNotice(&res.Pass, uploadErrs...)
	if bindErr != nil {
		prependNotice(&res.Pass, pipeline.Notice{
			Level: pipeline.LevelWarning,
			Text:  "Some map controls were invalid; the defaults are shown instead.",
		})
	}
	s.render(c, PageMap, res)
}

func (s *Server) handleCharts(c *gin.Context) {
	s.render(c, PageCharts, s.dashboard.Charts(c.Request.Context()))
}

// handleChartWidgets serves the chart page embedded by /charts. Charts that
// fail are left out; the page fails only when nothing could be drawn.
func (s *Server) handleChartWidgets(c *gin.Context) {
	var buf bytes.Buffer
	err := s.dashboard.ChartWidgets(&buf)
	if err != nil && buf.Len() == 0 {
		s.logger.Error("chart widgets failed", "error", err)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	if err != nil {
		s.logger.Warn("some charts were left out", "error", err)
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleCities(c *gin.Context) {
	ctx := c.Request.Context()
	var q cityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		res := s.dashboard.City(ctx, "")
		prependNotice(&res.Pass, pipeline.Notice{Level: pipeline.LevelWarning, Text: "Invalid city selection."})
		s.render(c, PageCities, res)
		return
	}
	s.render(c, PageCities, s.dashboard.City(ctx, q.City))
}

func (s *Server) handleDatasets(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Request.Method != http.MethodPost {
		s.render(c, PageDatasets, s.dashboard.Dataset(ctx, nil))
		return
	}
	if err := s.readForm(c, pipeline.FlowDatasets); err != nil {
		s.render(c, PageDatasets, pipeline.DatasetResult{Pass: rejectedPass(err)})
		return
	}
	up, err := formUpload(c, fieldFile)
	if err != nil {
		s.render(c, PageDatasets, pipeline.DatasetResult{Pass: rejectedPass(err)})
		return
	}
	s.render(c, PageDatasets, s.dashboard.Dataset(ctx, up))
}
