package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"opterra/internal/models"
	"opterra/internal/opterra"
	"opterra/internal/service"
)

func doJSON(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAssessmentHandlers_CreateGetList(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	stored := models.Assessment{
		ID:    "a-1",
		Label: "4812-maple-st-garage",
		Metrics: opterra.Metrics{
			Unit:        opterra.FuelGasTank,
			HealthScore: 81,
			Status:      opterra.TierNormal,
		},
		Recommendation: opterra.Recommendation{Action: opterra.ActionMonitor},
	}
	assessor := &mockAssessor{assessResp: stored, getResp: &stored, listResp: []models.Assessment{stored}}
	s := &service.Service{Authorization: auth, Assessor: assessor}
	r := newTestRouter(s)

	// POST without auth → 401
	w := doJSON(r, http.MethodPost, "/api/v1/assessments", `{"label":"x","inspection":{}}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	// POST with auth → 200 and body echoes the assessment
	body := `{"label":"4812-maple-st-garage","inspection":{"unit":"GAS_TANK","age_years":8,"location":"GARAGE"}}`
	w = doJSON(r, http.MethodPost, "/api/v1/assessments", body, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("create status=%d, body=%s", w.Code, w.Body.String())
	}
	if assessor.assessCalls != 1 || assessor.lastLabel != "4812-maple-st-garage" {
		t.Fatalf("Assess not called as expected: calls=%d label=%q", assessor.assessCalls, assessor.lastLabel)
	}
	if assessor.lastInspection.Unit != opterra.FuelGasTank || assessor.lastInspection.AgeYears != 8 {
		t.Fatalf("inspection not bound: %+v", assessor.lastInspection)
	}
	var created models.Assessment
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created: %v", err)
	}
	if created.ID != "a-1" || created.Metrics.HealthScore != 81 {
		t.Fatalf("unexpected create response: %+v", created)
	}

	// POST missing label → 400 from binding
	w = doJSON(r, http.MethodPost, "/api/v1/assessments", `{"inspection":{}}`, "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing label, got %d", w.Code)
	}

	// GET by id → 200
	w = doJSON(r, http.MethodGet, "/api/v1/assessments/a-1", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d, body=%s", w.Code, w.Body.String())
	}
	if assessor.lastGetID != "a-1" {
		t.Fatalf("Get id: got %q", assessor.lastGetID)
	}

	// GET list with limit → 200 count/assessments envelope
	w = doJSON(r, http.MethodGet, "/api/v1/assessments?limit=5", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("list status=%d, body=%s", w.Code, w.Body.String())
	}
	if assessor.lastListLimit != 5 {
		t.Fatalf("limit: got %d", assessor.lastListLimit)
	}
	var listResp struct {
		Count       int                 `json:"count"`
		Assessments []models.Assessment `json:"assessments"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &listResp)
	if listResp.Count != 1 || len(listResp.Assessments) != 1 {
		t.Fatalf("unexpected list response: %+v", listResp)
	}
}

func TestAssessmentHandlers_CreateValidationErrorIs400(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	assessor := &mockAssessor{
		assessErr: fmt.Errorf("%w: age_years must be >= 0", opterra.ErrInvalidInput),
	}
	s := &service.Service{Authorization: auth, Assessor: assessor}
	r := newTestRouter(s)

	body := `{"label":"x","inspection":{"unit":"GAS_TANK","age_years":-1,"location":"GARAGE"}}`
	w := doJSON(r, http.MethodPost, "/api/v1/assessments", body, "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid inspection, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAssessmentHandlers_GetNotFoundIs404(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	assessor := &mockAssessor{getErr: service.ErrAssessmentNotFound}
	s := &service.Service{Authorization: auth, Assessor: assessor}
	r := newTestRouter(s)

	w := doJSON(r, http.MethodGet, "/api/v1/assessments/missing", "", "valid")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAssessmentHandlers_GetInternalErrorIs500(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	assessor := &mockAssessor{getErr: errors.New("db down")}
	s := &service.Service{Authorization: auth, Assessor: assessor}
	r := newTestRouter(s)

	w := doJSON(r, http.MethodGet, "/api/v1/assessments/a-1", "", "valid")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAssessmentHandlers_GetRecommendation(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	stored := models.Assessment{
		ID: "a-1",
		Recommendation: opterra.Recommendation{
			Action:   opterra.ActionReplace,
			Reason:   "active tank body leak",
			Severity: opterra.SeverityCritical,
		},
	}
	assessor := &mockAssessor{getResp: &stored}
	s := &service.Service{Authorization: auth, Assessor: assessor}
	r := newTestRouter(s)

	w := doJSON(r, http.MethodGet, "/api/v1/assessments/a-1/recommendation", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("recommendation status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		AssessmentID   string                 `json:"assessment_id"`
		Recommendation opterra.Recommendation `json:"recommendation"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.AssessmentID != "a-1" || resp.Recommendation.Action != opterra.ActionReplace {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHealthEndpoint_NoAuthRequired(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{}}
	r := newTestRouter(s)

	w := doJSON(r, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != statusOK {
		t.Fatalf("unexpected health body: %+v", resp)
	}
}
