package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-parking-system/internal/config"
	"github.com/iliyamo/vehicle-parking-system/internal/model"
	"github.com/iliyamo/vehicle-parking-system/internal/queue"
	"github.com/iliyamo/vehicle-parking-system/internal/repository"
	queue_publisher "github.com/iliyamo/vehicle-parking-system/internal/service"
)

// ExportHandler drives the asynchronous CSV export flow: trigger a job,
// poll its status, download the finished file. The heavy lifting happens in
// the queue worker; these endpoints only touch the job table and the
// export directory.
type ExportHandler struct {
	exports *repository.ExportRepo
	cfg     *config.Config
	log     *logrus.Logger
	// publish is swappable for tests; defaults to the RabbitMQ publisher.
	publish func(c echo.Context, ev queue.ExportRequestedEvent) error
}

func NewExportHandler(exports *repository.ExportRepo, cfg *config.Config, log *logrus.Logger) *ExportHandler {
	return &ExportHandler{
		exports: exports,
		cfg:     cfg,
		log:     log,
		publish: func(c echo.Context, ev queue.ExportRequestedEvent) error {
			return queue_publisher.PublishExportRequested(c.Request().Context(), ev)
		},
	}
}

// Trigger creates a pending job and hands it to the export worker. The
// client gets the job id back immediately and polls for completion.
func (h *ExportHandler) Trigger(c echo.Context) error {
	cl, ok := callerFrom(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "missing token")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	jobID := uuid.NewString()
	if err := h.exports.Create(ctx, jobID, cl.ID); err != nil {
		h.log.WithError(err).WithField("user_id", cl.ID).Error("export: create job")
		return respondInternal(c)
	}

	ev := queue.ExportRequestedEvent{
		JobID:       jobID,
		UserID:      cl.ID,
		Username:    cl.Username,
		Email:       cl.Email,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.publish(c, ev); err != nil {
		h.log.WithError(err).WithField("job_id", jobID).Error("export: publish job")
		if dbErr := h.exports.MarkFailed(ctx, jobID, "export queue unavailable"); dbErr != nil {
			h.log.WithError(dbErr).WithField("job_id", jobID).Error("export: mark failed")
		}
		return respondErr(c, http.StatusServiceUnavailable, "export service unavailable")
	}

	return respondOK(c, http.StatusAccepted, "export started", echo.Map{
		"job_id": jobID,
		"status": model.ExportPending,
	})
}

// Status polls one job. Completed jobs include the download URL.
func (h *ExportHandler) Status(c echo.Context) error {
	cl, ok := callerFrom(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "missing token")
	}
	jobID := c.Param("id")
	if _, err := uuid.Parse(jobID); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid job id")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	job, err := h.exports.GetForUser(ctx, jobID, cl.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return respondErr(c, http.StatusNotFound, "export job not found")
	case errors.Is(err, repository.ErrForbidden):
		return respondErr(c, http.StatusForbidden, "not your export job")
	case err != nil:
		h.log.WithError(err).WithField("job_id", jobID).Error("export: poll job")
		return respondInternal(c)
	}

	data := echo.Map{
		"job_id":     job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt.UTC().Format(time.RFC3339),
	}
	if job.Filename != nil {
		data["filename"] = *job.Filename
		data["download_url"] = fmt.Sprintf("%s/api/user/download-csv/%s", h.cfg.ExportBaseURL, *job.Filename)
	}
	if job.Error != nil {
		data["error"] = *job.Error
	}
	return respondOK(c, http.StatusOK, "export status", data)
}

// Download streams a finished export. The filename must be a bare name and
// must belong to a completed job of the caller, which blocks both path
// traversal and cross-user filename guessing.
func (h *ExportHandler) Download(c echo.Context) error {
	cl, ok := callerFrom(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "missing token")
	}
	name := c.Param("file")
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return respondErr(c, http.StatusBadRequest, "invalid filename")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	owned, err := h.exports.FileBelongsToUser(ctx, name, cl.ID)
	if err != nil {
		h.log.WithError(err).WithField("file", name).Error("export: ownership check")
		return respondInternal(c)
	}
	if !owned {
		return respondErr(c, http.StatusNotFound, "export file not found")
	}
	return c.Attachment(filepath.Join(h.cfg.ExportDir, name), name)
}
