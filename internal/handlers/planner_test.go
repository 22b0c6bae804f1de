package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"opterra/internal/opterra"
	"opterra/internal/service"
)

func TestPlannerHandlers_CatalogSimulateProject(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	planner := &mockPlanner{
		catalog: opterra.Catalog(),
		simResp: service.SimulationResult{
			AssessmentID: "a-1",
			Before:       opterra.Metrics{HealthScore: 42, Status: opterra.TierElevated},
			After:        opterra.Metrics{HealthScore: 61, Status: opterra.TierElevated},
		},
		projResp: opterra.Projection{Months: 24, HealthScore: 35, Status: opterra.TierHigh},
	}
	s := &service.Service{Authorization: auth, Planner: planner}
	r := newTestRouter(s)

	// GET /repairs without auth → 401
	w := doJSON(r, http.MethodGet, "/api/v1/repairs", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	// GET /repairs → 200 count/repairs envelope
	w = doJSON(r, http.MethodGet, "/api/v1/repairs", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("catalog status=%d, body=%s", w.Code, w.Body.String())
	}
	var catResp struct {
		Count   int                    `json:"count"`
		Repairs []opterra.RepairOption `json:"repairs"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &catResp)
	if catResp.Count == 0 || len(catResp.Repairs) != catResp.Count {
		t.Fatalf("unexpected catalog response: %+v", catResp)
	}

	// POST simulate → 200 and passes the ids through
	body := `{"repair_ids":["TANK_FLUSH","ANODE_REPLACE"]}`
	w = doJSON(r, http.MethodPost, "/api/v1/assessments/a-1/simulate", body, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("simulate status=%d, body=%s", w.Code, w.Body.String())
	}
	if planner.simCalls != 1 || planner.lastSimID != "a-1" {
		t.Fatalf("Simulate not called as expected: calls=%d id=%q", planner.simCalls, planner.lastSimID)
	}
	if len(planner.lastRepairs) != 2 || planner.lastRepairs[0] != opterra.RepairTankFlush {
		t.Fatalf("repair ids not bound: %v", planner.lastRepairs)
	}
	var simResp service.SimulationResult
	if err := json.Unmarshal(w.Body.Bytes(), &simResp); err != nil {
		t.Fatalf("unmarshal simulate: %v", err)
	}
	if simResp.After.HealthScore != 61 {
		t.Fatalf("unexpected simulate response: %+v", simResp)
	}

	// POST simulate missing repair_ids → 400 from binding
	w = doJSON(r, http.MethodPost, "/api/v1/assessments/a-1/simulate", `{}`, "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing repair_ids, got %d", w.Code)
	}

	// GET projection with explicit months
	w = doJSON(r, http.MethodGet, "/api/v1/assessments/a-1/projection?months=24", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("projection status=%d, body=%s", w.Code, w.Body.String())
	}
	if planner.lastMonths != 24 || planner.lastProjID != "a-1" {
		t.Fatalf("Project args: months=%d id=%q", planner.lastMonths, planner.lastProjID)
	}
	var projResp struct {
		AssessmentID string             `json:"assessment_id"`
		Projection   opterra.Projection `json:"projection"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &projResp)
	if projResp.Projection.Months != 24 || projResp.Projection.Status != opterra.TierHigh {
		t.Fatalf("unexpected projection response: %+v", projResp)
	}

	// GET projection without months → default horizon
	w = doJSON(r, http.MethodGet, "/api/v1/assessments/a-1/projection", "", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("projection status=%d, body=%s", w.Code, w.Body.String())
	}
	if planner.lastMonths != defaultProjectionMonths {
		t.Fatalf("expected default months %d, got %d", defaultProjectionMonths, planner.lastMonths)
	}

	// GET projection with junk months → 400
	w = doJSON(r, http.MethodGet, "/api/v1/assessments/a-1/projection?months=soon", "", "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad months, got %d", w.Code)
	}
}

func TestPlannerHandlers_SimulateErrorMapping(t *testing.T) {
	auth := &mockAuth{parseID: 7}

	cases := []struct {
		name       string
		err        error
		code       int
		projection bool // exercise the projection endpoint instead of simulate
	}{
		{name: "simulate not found", err: service.ErrAssessmentNotFound, code: http.StatusNotFound},
		{name: "simulate unknown repair", err: service.ErrUnknownRepair, code: http.StatusBadRequest},
		{name: "projection not found", err: service.ErrAssessmentNotFound, code: http.StatusNotFound, projection: true},
		{name: "projection invalid horizon", err: service.ErrInvalidHorizon, code: http.StatusBadRequest, projection: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			planner := &mockPlanner{simErr: tc.err, projErr: tc.err}
			s := &service.Service{Authorization: auth, Planner: planner}
			r := newTestRouter(s)

			var w *httptest.ResponseRecorder
			if tc.projection {
				w = doJSON(r, http.MethodGet, "/api/v1/assessments/a-1/projection", "", "valid")
			} else {
				w = doJSON(r, http.MethodPost, "/api/v1/assessments/a-1/simulate", `{"repair_ids":["TANK_FLUSH"]}`, "valid")
			}
			if w.Code != tc.code {
				t.Fatalf("got %d, want %d (body=%s)", w.Code, tc.code, w.Body.String())
			}
		})
	}
}
