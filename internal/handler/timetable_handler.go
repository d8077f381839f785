package handler

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/ingest"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

const maxRosterFileSize = 8 << 20

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	GenerateRoster(ctx context.Context, roster models.Roster) (*dto.GenerateTimetableResponse, error)
	Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error)
	List(ctx context.Context, query dto.TimetableRunQuery) ([]models.TimetableRun, error)
	Get(ctx context.Context, id string) (*dto.TimetableRunDetail, error)
	Delete(ctx context.Context, id string) error
}

type runExporter interface {
	ExportRun(ctx context.Context, runID string, format service.ExportFormat) (*service.ExportResult, error)
}

// TimetableHandler exposes timetable generation and run endpoints.
type TimetableHandler struct {
	service  timetableGenerator
	exporter runExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService, exporter *service.ExportService) *TimetableHandler {
	return &TimetableHandler{service: svc, exporter: exporter}
}

// Generate godoc
// @Summary Generate a timetable proposal from an inline roster
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Roster payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Import godoc
// @Summary Generate a timetable proposal from uploaded CSV sheets
// @Description Expects multipart form files named students, courses, teachers and rooms.
// @Tags Timetables
// @Accept multipart/form-data
// @Produce json
// @Param students formData file true "Students sheet"
// @Param courses formData file true "Courses sheet"
// @Param teachers formData file true "Teachers sheet"
// @Param rooms formData file true "Rooms sheet"
// @Success 200 {object} response.Envelope
// @Router /timetables/import [post]
func (h *TimetableHandler) Import(c *gin.Context) {
	files := make(map[string]multipart.File, 4)
	for _, name := range []string{"students", "courses", "teachers", "rooms"} {
		file, err := openRosterFile(c, name)
		if err != nil {
			response.Error(c, err)
			return
		}
		defer file.Close()
		files[name] = file
	}

	roster, err := ingest.ParseRoster(files["students"], files["courses"], files["teachers"], files["rooms"])
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to parse roster sheets"))
		return
	}

	result, err := h.service.GenerateRoster(c.Request.Context(), roster)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Save godoc
// @Summary Persist a generated proposal as a versioned run
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Save payload"
// @Success 201 {object} response.Envelope
// @Router /timetables/save [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	id, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"runId": id})
}

// List godoc
// @Summary List stored timetable runs
// @Tags Timetables
// @Produce json
// @Param datasetId query string false "Roster dataset digest"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	query := dto.TimetableRunQuery{DatasetID: c.Query("datasetId")}
	result, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Get a stored run with its entries
// @Tags Timetables
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete a draft run
// @Tags Timetables
// @Param id path string true "Run ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a stored run as CSV or PDF
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Run ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /timetables/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exporter.ExportRun(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func openRosterFile(c *gin.Context, field string) (multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing "+field+" sheet")
	}
	if header.Size > maxRosterFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, field+" sheet exceeds size limit")
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open "+field+" sheet")
	}
	return file, nil
}
