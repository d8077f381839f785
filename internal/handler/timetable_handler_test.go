package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	internalmiddleware "github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type timetableServiceMock struct {
	captured     dto.GenerateTimetableRequest
	rosterSeen   *models.Roster
	savedRequest dto.SaveTimetableRequest
	deleteErr    error
}

func (m *timetableServiceMock) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	m.captured = req
	return &dto.GenerateTimetableResponse{ProposalID: "proposal-1", DatasetID: "digest-1"}, nil
}

func (m *timetableServiceMock) GenerateRoster(ctx context.Context, roster models.Roster) (*dto.GenerateTimetableResponse, error) {
	m.rosterSeen = &roster
	return &dto.GenerateTimetableResponse{ProposalID: "proposal-2", DatasetID: "digest-2"}, nil
}

func (m *timetableServiceMock) Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error) {
	m.savedRequest = req
	return "run-1", nil
}

func (m *timetableServiceMock) List(ctx context.Context, query dto.TimetableRunQuery) ([]models.TimetableRun, error) {
	return []models.TimetableRun{{ID: "run-1", DatasetID: query.DatasetID}}, nil
}

func (m *timetableServiceMock) Get(ctx context.Context, id string) (*dto.TimetableRunDetail, error) {
	if id != "run-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable run not found")
	}
	return &dto.TimetableRunDetail{Run: models.TimetableRun{ID: id}}, nil
}

func (m *timetableServiceMock) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

type exporterMock struct{}

func (exporterMock) ExportRun(ctx context.Context, runID string, format service.ExportFormat) (*service.ExportResult, error) {
	if format != service.ExportFormatCSV {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	return &service.ExportResult{Content: []byte("Section,Time\n"), ContentType: "text/csv", Filename: "timetable-v1.csv"}, nil
}

func TestTimetableHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{}
	handler := &TimetableHandler{service: mockSvc}

	payload := []byte(`{"students":[{"id":"s1","section":"A","courses":["c1"]}],"courses":[{"id":"c1","teacherId":"t1"}],"teachers":[{"id":"t1"}],"rooms":[{"id":"r1"}]}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mockSvc.captured.Students, 1)
	assert.Equal(t, "A", mockSvc.captured.Students[0].Section)
}

func TestTimetableHandlerGenerateBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader([]byte(`{"students":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerImport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{}
	handler := &TimetableHandler{service: mockSvc}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	sheets := map[string]string{
		"students": "ID,Name,Section,Courses\ns1,Ana,A,c1\n",
		"courses":  "ID,Name,TeacherID,Duration\nc1,Math,t1,1\n",
		"teachers": "ID,Name,Courses\nt1,Ms. Rose,c1\n",
		"rooms":    "ID,Name,Type,Capacity\nr1,Room 101,normal,30\n",
	}
	for field, content := range sheets {
		part, err := writer.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/timetables/import", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Import(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.rosterSeen)
	require.Len(t, mockSvc.rosterSeen.Students, 1)
	assert.Equal(t, "A", mockSvc.rosterSeen.Students[0].Section)
	assert.Contains(t, mockSvc.rosterSeen.Courses, "c1")
}

func TestTimetableHandlerImportMissingSheet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("students", "students.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("ID,Name,Section,Courses\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/timetables/import", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Import(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerSave(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{}
	handler := &TimetableHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/timetables/save", bytes.NewReader([]byte(`{"proposalId":"proposal-1","publish":true}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Save(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "proposal-1", mockSvc.savedRequest.ProposalID)
	assert.True(t, mockSvc.savedRequest.Publish)

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "run-1", envelope.Data["runId"])
}

func TestTimetableHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}}
	router := gin.New()
	router.GET("/timetables/:id", handler.Get)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetables/missing", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}, exporter: exporterMock{}}
	router := gin.New()
	router.GET("/timetables/:id/export", handler.Export)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetables/run-1/export?format=csv", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable-v1.csv")
}

func TestTimetableHandlerGenerateUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}}
	router := gin.New()
	router.POST("/timetables/generate", internalmiddleware.RBAC(models.RoleAdmin, models.RoleScheduler), handler.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimetableHandlerGenerateForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableServiceMock{}}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "viewer-1", Role: models.RoleViewer})
		c.Next()
	})
	router.POST("/timetables/generate", internalmiddleware.RBAC(models.RoleAdmin, models.RoleScheduler), handler.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}
