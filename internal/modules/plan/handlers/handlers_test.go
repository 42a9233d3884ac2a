package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/microinvest/internal/database"
	"github.com/aristath/microinvest/internal/modules/allocation"
	"github.com/aristath/microinvest/internal/modules/plan"
	"github.com/aristath/microinvest/internal/modules/projection"
	"github.com/aristath/microinvest/internal/modules/risk"
	"github.com/aristath/microinvest/internal/modules/sessions"
)

func setupHandler(t *testing.T, model *risk.Model) (*Handler, *sessions.Repository) {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "sessions.db"),
		Profile: database.ProfileCache,
		Name:    "sessions-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := sessions.NewRepository(db, zerolog.Nop())
	require.NoError(t, err)

	service := plan.NewService(model, allocation.ProbabilityPolicy{}, projection.NewEngine(zerolog.Nop()), repo, zerolog.Nop())
	return NewHandler(service, repo, zerolog.Nop()), repo
}

func neutralModel(t *testing.T) *risk.Model {
	t.Helper()

	columns := []string{
		"age", "income", "savings_goal", "horizon_months", "experience_level",
		"risk_attitude", "buffer_months", "fixed_costs", "pension_contrib",
		"tax_estimate", "debt_amount", "debt_interest", "mortgage_interest",
		"cost_sensitivity", "sustainable",
	}
	scale := make([]float64, len(columns))
	for i := range scale {
		scale[i] = 1
	}
	model := risk.NewModel(risk.Artifact{
		Center:  make([]float64, len(columns)),
		Scale:   scale,
		Weights: make([]float64, len(columns)),
		CalibA:  -1,
	}, columns)
	require.NotNil(t, model)
	return model
}

func testRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router chi.Router, path string, body map[string]string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleBuildPlan_OK(t *testing.T) {
	h, _ := setupHandler(t, neutralModel(t))
	router := testRouter(h)

	w := postJSON(t, router, "/plan", map[string]string{
		"income":            "3000",
		"fixed_costs":       "1200",
		"pension_contrib":   "100",
		"buffer_months":     "4",
		"horizon_months":    "36",
		"experience_select": "basic",
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Plan plan.Result `json:"plan"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, 0.5, resp.Plan.Score)
	assert.Equal(t, 119, resp.Plan.SuggestedContribution)
	assert.Equal(t, 0.55, resp.Plan.Allocation[allocation.AssetEquity])

	// First contact sets the session cookie
	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "mi_session" && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "session cookie missing")
}

func TestHandleBuildPlan_PreconditionIs422(t *testing.T) {
	h, _ := setupHandler(t, nil) // no model installed
	router := testRouter(h)

	w := postJSON(t, router, "/plan", map[string]string{
		"income":            "3000",
		"experience_select": "basic",
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "model")
}

func TestHandleBuildPlan_MissingExperienceIs422(t *testing.T) {
	h, _ := setupHandler(t, neutralModel(t))
	router := testRouter(h)

	w := postJSON(t, router, "/plan", map[string]string{"income": "3000"}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "experience")
}

func TestHandleBuildPlan_BadBody(t *testing.T) {
	h, _ := setupHandler(t, neutralModel(t))
	router := testRouter(h)

	req := httptest.NewRequest("POST", "/plan", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleBuildQuickPlan(t *testing.T) {
	h, _ := setupHandler(t, nil) // quick flow works without a model
	router := testRouter(h)

	w := postJSON(t, router, "/plan/quick", map[string]string{
		"income":         "3000",
		"horizon_months": "12",
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Plan plan.Result `json:"plan"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 300, resp.Plan.Contribution)
	assert.Equal(t, 0.80, resp.Plan.Allocation[allocation.AssetEquity])
	assert.Equal(t, 0.08, resp.Plan.Score)
}

func TestHandleSetModeAndGetForm(t *testing.T) {
	h, _ := setupHandler(t, neutralModel(t))
	router := testRouter(h)

	w := postJSON(t, router, "/mode/quick", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The same session now reports the quick-mode form schema
	req := httptest.NewRequest("GET", "/form", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)

	require.Equal(t, http.StatusOK, w2.Code)
	var resp struct {
		Mode   string            `json:"mode"`
		Fields []json.RawMessage `json:"fields"`
		Sticky map[string]string `json:"sticky"`
	}
	require.NoError(t, json.NewDecoder(w2.Body).Decode(&resp))
	assert.Equal(t, "quick", resp.Mode)
	assert.NotEmpty(t, resp.Fields)
}

func TestHandleSetMode_Unknown(t *testing.T) {
	h, _ := setupHandler(t, neutralModel(t))
	router := testRouter(h)

	w := postJSON(t, router, "/mode/evil", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleEnroll_UsesStickyContribution(t *testing.T) {
	h, _ := setupHandler(t, neutralModel(t))
	router := testRouter(h)

	// Build a plan first so the contribution sticks to the session
	w := postJSON(t, router, "/plan", map[string]string{
		"income":            "3000",
		"experience_select": "basic",
		"contribution":      "150",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	w2 := postJSON(t, router, "/enroll", nil, cookies)
	require.Equal(t, http.StatusOK, w2.Code)

	var resp struct {
		Amount    int    `json:"amount"`
		IBAN      string `json:"iban"`
		Reference string `json:"reference"`
	}
	require.NoError(t, json.NewDecoder(w2.Body).Decode(&resp))
	assert.Equal(t, 150, resp.Amount)
	assert.True(t, strings.HasPrefix(resp.Reference, "PLAN-"))
	assert.Len(t, resp.Reference, len("PLAN-")+6)
	assert.NotEmpty(t, resp.IBAN)
}

func TestHandleEnroll_DefaultAmount(t *testing.T) {
	h, _ := setupHandler(t, neutralModel(t))
	router := testRouter(h)

	w := postJSON(t, router, "/enroll", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Amount int `json:"amount"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 100, resp.Amount)
}

func TestHandleDemoData_CSV(t *testing.T) {
	h, _ := setupHandler(t, neutralModel(t))
	router := testRouter(h)

	req := httptest.NewRequest("GET", "/demo-data.csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "age,income,savings_goal,horizon_months,experience_level,buffer_months", strings.TrimSpace(lines[0]))
}

func TestStickySurvivesAcrossRequests(t *testing.T) {
	h, repo := setupHandler(t, neutralModel(t))
	router := testRouter(h)

	w := postJSON(t, router, "/plan", map[string]string{
		"income":            "3000",
		"experience_select": "basic",
		"phone":             "0612345678", // not a good-mode field
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var sessionID string
	for _, c := range w.Result().Cookies() {
		if c.Name == "mi_session" {
			sessionID = c.Value
		}
	}
	require.NotEmpty(t, sessionID)

	// The store keeps everything submitted; mode filtering is a render concern
	sess, err := repo.Get(sessionID)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "3000", sess.Sticky["income"])
	assert.Equal(t, "0612345678", sess.Sticky["phone"])

	// The good-mode form echo hides the quick-only field
	req := httptest.NewRequest("GET", "/form", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	var resp struct {
		Sticky map[string]string `json:"sticky"`
	}
	require.NoError(t, json.NewDecoder(w2.Body).Decode(&resp))
	assert.Equal(t, "3000", resp.Sticky["income"])
	assert.NotContains(t, resp.Sticky, "phone")
}

func TestStickySurvivesModeSwitch(t *testing.T) {
	h, _ := setupHandler(t, neutralModel(t))
	router := testRouter(h)

	w := postJSON(t, router, "/plan", map[string]string{
		"income":            "3000",
		"experience_select": "basic",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Bounce through the quick flow and back
	w = postJSON(t, router, "/mode/quick", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	w = postJSON(t, router, "/plan/quick", map[string]string{
		"phone": "0612345678",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	w = postJSON(t, router, "/mode/good", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest("GET", "/form", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	var resp struct {
		Mode   string            `json:"mode"`
		Sticky map[string]string `json:"sticky"`
	}
	require.NoError(t, json.NewDecoder(w2.Body).Decode(&resp))
	assert.Equal(t, "good", resp.Mode)
	assert.Equal(t, "3000", resp.Sticky["income"], "good-mode values survive a quick detour")
	assert.NotContains(t, resp.Sticky, "phone")
}

func TestParseContribution(t *testing.T) {
	assert.Equal(t, 150, parseContribution("150"))
	assert.Equal(t, 150, parseContribution(" 150 "))
	assert.Equal(t, 0, parseContribution(""))
	assert.Equal(t, 0, parseContribution("-5"))
	assert.Equal(t, 0, parseContribution("abc"))
}
