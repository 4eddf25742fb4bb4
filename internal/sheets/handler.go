package sheets

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"secretary-backend/internal/shared/server/respond"
	"secretary-backend/internal/tasks"
)

const maxCredentialBytes = 1 << 20

// Handler exposes the sheet publishing endpoint.
type Handler struct {
	publisher *Publisher
}

// NewHandler constructs a sheets handler.
func NewHandler(p *Publisher) *Handler {
	return &Handler{publisher: p}
}

// RegisterRoutes mounts the sheets routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sheets", h.publish)
}

// publish accepts a multipart form: task and result fields, a credentials
// upload (service account JSON), and an optional email to share with.
// Publishing failures come back 200 with a message so the caller can show
// them; only malformed input is rejected.
func (h *Handler) publish(c *gin.Context) {
	task, err := tasks.Parse(c.PostForm("task"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	c.Set("taskType", string(task))

	result := json.RawMessage(c.PostForm("result"))
	if len(result) == 0 || !json.Valid(result) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "result must be valid JSON", nil)
		return
	}
	if msg, failed := tasks.ErrorMessage(result); failed {
		respond.Error(c, http.StatusBadRequest, "validation_error", "result is an error payload: "+msg, nil)
		return
	}

	credentials := []byte(c.PostForm("credentials"))
	if len(credentials) == 0 {
		fh, err := c.FormFile("credentials")
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "service account credentials are required", nil)
			return
		}
		if fh.Size > maxCredentialBytes {
			respond.Error(c, http.StatusBadRequest, "validation_error", "credentials exceed size limit", nil)
			return
		}
		src, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "failed to open credentials upload", nil)
			return
		}
		credentials, err = io.ReadAll(src)
		src.Close()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read credentials upload", nil)
			return
		}
	}

	outcome := h.publisher.Publish(c.Request.Context(), Request{
		Task:        task,
		Result:      result,
		Credentials: credentials,
		ShareEmail:  c.PostForm("email"),
	})
	respond.OK(c, outcome)
}
