package handlers

import (
	"context"
	"net/http"
	"time"

	"opterra/internal/models"
	"opterra/internal/opterra"
	"opterra/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockAssessor struct {
	assessResp  models.Assessment
	assessErr   error
	getResp     *models.Assessment
	getErr      error
	listResp    []models.Assessment
	listErr     error
	previewResp models.Assessment
	previewErr  error

	lastLabel      string
	lastInspection opterra.InspectionInput
	lastGetID      string
	lastListLimit  int
	assessCalls    int
}

func (m *mockAssessor) Assess(ctx context.Context, label string, in opterra.InspectionInput) (models.Assessment, error) {
	m.assessCalls++
	m.lastLabel = label
	m.lastInspection = in
	return m.assessResp, m.assessErr
}
func (m *mockAssessor) Get(ctx context.Context, id string) (*models.Assessment, error) {
	m.lastGetID = id
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getResp == nil {
		return nil, service.ErrAssessmentNotFound
	}
	return m.getResp, nil
}
func (m *mockAssessor) List(ctx context.Context, limit int) ([]models.Assessment, error) {
	m.lastListLimit = limit
	return m.listResp, m.listErr
}
func (m *mockAssessor) Rescore(ctx context.Context, a models.Assessment, now time.Time) (models.Assessment, error) {
	return a, nil
}
func (m *mockAssessor) Preview(ctx context.Context, id string, now time.Time) (models.Assessment, error) {
	return m.previewResp, m.previewErr
}

type mockPlanner struct {
	catalog      []opterra.RepairOption
	simResp      service.SimulationResult
	simErr       error
	projResp     opterra.Projection
	projErr      error
	lastSimID    string
	lastRepairs  []string
	lastProjID   string
	lastMonths   int
	simCalls     int
	projectCalls int
}

func (m *mockPlanner) Catalog() []opterra.RepairOption {
	return m.catalog
}
func (m *mockPlanner) Simulate(ctx context.Context, id string, repairIDs []string) (service.SimulationResult, error) {
	m.simCalls++
	m.lastSimID = id
	m.lastRepairs = repairIDs
	return m.simResp, m.simErr
}
func (m *mockPlanner) Project(ctx context.Context, id string, months int) (opterra.Projection, error) {
	m.projectCalls++
	m.lastProjID = id
	m.lastMonths = months
	return m.projResp, m.projErr
}

type mockEventLog struct {
	resp     []models.AssessmentEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.AssessmentEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
