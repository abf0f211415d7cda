package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/couchcryptid/noise-dashboard/internal/mapscene"
	"github.com/couchcryptid/noise-dashboard/internal/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// Form field names.
const (
	fieldFile     = "file"
	fieldCSV      = "csv"
	fieldBoundary = "boundary_file"
)

var registerOnce sync.Once

// registerValidations adds the form rules that depend on dashboard data to
// gin's validator.
func registerValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		//nolint:errcheck // only fails on an empty tag name
		v.RegisterValidation("tilestyle", func(fl validator.FieldLevel) bool {
			_, ok := mapscene.LookupTiles(mapscene.TileStyle(fl.Field().String()))
			return ok
		})
	})
}

// mapForm is the state map control panel.
type mapForm struct {
	Zoom        int    `form:"zoom" binding:"omitempty,min=5,max=10"`
	Tiles       string `form:"tiles" binding:"omitempty,tilestyle"`
	Markers     bool   `form:"markers"`
	Heatmap     bool   `form:"heatmap"`
	Boundary    string `form:"boundary" binding:"omitempty,oneof=none upload url"`
	BoundaryURL string `form:"boundary_url" binding:"omitempty,url"`
}

// controls converts a bound form, filling omitted fields with defaults.
func (f mapForm) controls() pipeline.MapControls {
	c := pipeline.DefaultMapControls()
	if f.Zoom != 0 {
		c.Zoom = f.Zoom
	}
	if f.Tiles != "" {
		c.Tiles = mapscene.TileStyle(f.Tiles)
	}
	c.Markers = f.Markers
	c.Heatmap = f.Heatmap
	if f.Boundary != "" {
		c.BoundarySource = pipeline.BoundarySource(f.Boundary)
	}
	c.BoundaryURL = f.BoundaryURL
	return c
}

// cityQuery selects a city on the cities page.
type cityQuery struct {
	City string `form:"city" binding:"omitempty,max=64"`
}

var errTooLarge = errors.New("upload too large")

// parseUploadForm reads a multipart form bounded by the upload limit.
func (s *Server) parseUploadForm(c *gin.Context) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	err := c.Request.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return fmt.Errorf("%w: the limit is %d bytes", errTooLarge, s.opts.MaxUploadBytes)
	}
	return fmt.Errorf("read form: %w", err)
}

// formUpload returns the named file of a parsed form, or nil when none was sent.
func formUpload(c *gin.Context, field string) (*pipeline.Upload, error) {
	if c.Request.MultipartForm == nil {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return &pipeline.Upload{Name: fh.Filename, Data: data}, nil
}

// rejectedPass reports a form that could not be read at all.
func rejectedPass(err error) pipeline.Pass {
	pass := pipeline.NewPass()
	if errors.Is(err, errTooLarge) {
		pass.Notify(pipeline.LevelError, "Upload rejected: %v.", err)
		return pass
	}
	pass.Notify(pipeline.LevelError, "Could not read the form: %v", err)
	return pass
}

// prependNotice puts form-level notices ahead of the pass notices.
func prependNotice(pass *pipeline.Pass, notices ...pipeline.Notice) {
	if len(notices) == 0 {
		return
	}
	pass.Notices = append(append([]pipeline.Notice{}, notices...), pass.Notices...)
}
