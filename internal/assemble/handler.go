package assemble

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"secretary-backend/internal/shared/server/respond"
	"secretary-backend/internal/shared/util"
	"secretary-backend/internal/tasks"
)

const maxTemplateBytes = 10 << 20

// Handler exposes the artifact rendering endpoint.
type Handler struct {
	assembler *Assembler
}

// NewHandler constructs an artifact handler.
func NewHandler(a *Assembler) *Handler {
	return &Handler{assembler: a}
}

// RegisterRoutes mounts the artifact routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/artifacts", h.render)
}

type renderRequest struct {
	Task   string          `json:"task"`
	Result json.RawMessage `json:"result"`
}

// render accepts either a JSON body {task, result} or a multipart form with
// task and result fields plus an optional notice template upload.
func (h *Handler) render(c *gin.Context) {
	var (
		req      renderRequest
		template []byte
	)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req.Task = c.PostForm("task")
		req.Result = json.RawMessage(c.PostForm("result"))
		if fh, err := c.FormFile("template"); err == nil {
			if fh.Size > maxTemplateBytes {
				respond.Error(c, http.StatusBadRequest, "validation_error", "template exceeds size limit", nil)
				return
			}
			src, err := fh.Open()
			if err != nil {
				respond.Error(c, http.StatusBadRequest, "validation_error", "failed to open template upload", nil)
				return
			}
			template, err = io.ReadAll(src)
			src.Close()
			if err != nil {
				respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read template upload", nil)
				return
			}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	task, err := tasks.Parse(req.Task)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	c.Set("taskType", string(task))

	if len(req.Result) == 0 || !json.Valid(req.Result) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "result must be valid JSON", nil)
		return
	}
	if msg, failed := tasks.ErrorMessage(req.Result); failed {
		respond.Error(c, http.StatusBadRequest, "validation_error", "result is an error payload: "+msg, nil)
		return
	}

	artifact, err := h.assembler.Render(task, req.Result, template)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "render_error", err.Error(), nil)
		return
	}

	name, err := util.SanitizeFileName(artifact.Name)
	if err != nil {
		name = task.DefaultFilename() + task.Extension()
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
