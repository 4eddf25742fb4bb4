package analyses

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"secretary-backend/internal/extract"
	"secretary-backend/internal/prompt"
	"secretary-backend/internal/shared/server/respond"
	"secretary-backend/internal/tasks"
)

const maxUploadBytes = 25 << 20

// Handler exposes the analysis endpoint.
type Handler struct {
	svc  *Service
	opts extract.Options
}

// NewHandler constructs an analysis handler. A nil service marks the
// deployment as unconfigured (no API key).
func NewHandler(svc *Service, opts extract.Options) *Handler {
	return &Handler{svc: svc, opts: opts}
}

// RegisterRoutes mounts the analysis routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	if h.svc == nil {
		respond.Error(c, http.StatusServiceUnavailable, "not_configured", "GEMINI_API_KEY is not configured", nil)
		return
	}

	task, err := tasks.Parse(c.PostForm("task"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	c.Set("taskType", string(task))

	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid multipart form", nil)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one file is required", nil)
		return
	}

	files := make([]extract.File, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxUploadBytes {
			respond.Error(c, http.StatusBadRequest, "validation_error", "file exceeds size limit: "+fh.Filename, nil)
			return
		}
		src, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "failed to open upload: "+fh.Filename, nil)
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read upload: "+fh.Filename, nil)
			return
		}
		files = append(files, extract.File{
			Name: fh.Filename,
			MIME: fh.Header.Get("Content-Type"),
			Data: data,
		})
	}

	content, err := extract.Build(files, h.opts)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "extract_error", err.Error(), nil)
		return
	}

	req := prompt.Assemble(task, content, c.PostForm("instruction"))
	outcome := h.svc.Analyze(c.Request.Context(), req)

	if msg, failed := tasks.ErrorMessage(outcome.Result); failed {
		respond.Error(c, http.StatusBadGateway, "analysis_failed", msg, nil)
		return
	}
	if outcome.Meta != nil {
		c.Set("modelUsed", outcome.Meta.Model)
	}
	respond.OK(c, outcome)
}
