package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/rozpoctar/boq-classifier/internal/classifier"
	"github.com/rozpoctar/boq-classifier/internal/config"
	"github.com/rozpoctar/boq-classifier/internal/database"
	"github.com/rozpoctar/boq-classifier/internal/domain"
	"github.com/rozpoctar/boq-classifier/internal/processor"
)

// mockLogger implements Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// setupTestHandler wires a handler from real components. rulesRepo may be
// nil to exercise the disabled rule store paths.
func setupTestHandler(rules []domain.WorkGroupRule, rulesRepo *database.RulesRepository) *Handler {
	logger := &mockLogger{}

	scorer := classifier.NewWorkGroupScorer(rules, nil)
	orchestrator := classifier.NewOrchestrator(scorer, nil, nil)
	rows := classifier.NewRowClassifier(nil)

	batch := processor.NewBatchProcessor(rows, orchestrator, 2, nil, logger)
	limited := processor.NewRateLimitedProcessor(batch, 1000, logger)

	defaults := config.ClassificationConfig{MinConfidence: 50, SuggestThreshold: 50}

	return NewHandler(rows, orchestrator, scorer, limited, rulesRepo, defaults, logger)
}

// setupRouter creates a test router with the service routes, no JWT.
func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupServiceRoutes(router, handler, "", nil)
	return router
}

func setupRulesRepo(t *testing.T) *database.RulesRepository {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := database.NewRulesRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return repo
}

func pricedItem(rowStart int, kod, popis, unit string) *domain.Item {
	mnozstvi := 10.0
	cena := 1500.0
	return &domain.Item{
		ID:             fmt.Sprintf("i%d", rowStart),
		Kod:            kod,
		Popis:          popis,
		PopisFull:      popis,
		MJ:             &unit,
		Mnozstvi:       &mnozstvi,
		CenaJednotkova: &cena,
		Source:         domain.SourceRef{Sheet: "Rozpočet", RowStart: rowStart, RowEnd: rowStart},
	}
}

func sampleItems() []*domain.Item {
	return []*domain.Item{
		{ID: "i1", Popis: "Díl 1: Zemní práce", Source: domain.SourceRef{RowStart: 1, RowEnd: 1}},
		pricedItem(2, "121101101", "Sejmutí ornice s přemístěním", "m3"),
		pricedItem(3, "224361114", "Vrtané piloty průměr 900mm", "m"),
	}
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestClassifyRows_Success(t *testing.T) {
	handler := setupTestHandler(classifier.DefaultWorkGroupRules, nil)
	router := setupRouter(handler)

	w := postJSON(t, router, "/api/v1/classify/rows", ItemsRequest{Items: sampleItems()})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response ClassifyRowsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if response.Stats.Total != 3 {
		t.Errorf("expected total 3, got %d", response.Stats.Total)
	}
	if response.Stats.MainCount != 2 {
		t.Errorf("expected 2 main items, got %d", response.Stats.MainCount)
	}
	if response.Stats.SectionCount != 1 {
		t.Errorf("expected 1 section, got %d", response.Stats.SectionCount)
	}
	for _, item := range response.Items {
		if item.RowRole == "" || item.RowRole == domain.RowRoleUnknown {
			t.Errorf("item %s row role = %q, want a recognized role", item.ID, item.RowRole)
		}
	}
}

func TestClassifyRows_InvalidRequest(t *testing.T) {
	handler := setupTestHandler(classifier.DefaultWorkGroupRules, nil)
	router := setupRouter(handler)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/classify/rows", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestClassifyGroups_Success(t *testing.T) {
	handler := setupTestHandler(classifier.DefaultWorkGroupRules, nil)
	router := setupRouter(handler)

	w := postJSON(t, router, "/api/v1/classify/groups", ClassifyGroupsRequest{Items: sampleItems()})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response processor.ProcessResult
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if response.Groups.Total != 2 {
		t.Errorf("expected 2 main items scored, got %d", response.Groups.Total)
	}
	if response.Groups.Classified != 2 {
		t.Errorf("expected 2 classified, got %d (by group %v)", response.Groups.Classified, response.Groups.ByGroup)
	}

	byID := map[string]*domain.Item{}
	for _, item := range response.Items {
		byID[item.ID] = item
	}
	if item := byID["i3"]; item.Skupina == nil || *item.Skupina != domain.GroupPiloty {
		t.Errorf("item i3 skupina = %v, want %s", item.Skupina, domain.GroupPiloty)
	}
}

func TestSuggest_Success(t *testing.T) {
	handler := setupTestHandler(classifier.DefaultWorkGroupRules, nil)
	router := setupRouter(handler)

	items := []*domain.Item{
		pricedItem(1, "762332110", "Bednění stěn", "m2"),
	}

	w := postJSON(t, router, "/api/v1/classify/suggest", SuggestRequest{Items: items})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response SuggestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if response.Total != 1 {
		t.Fatalf("expected 1 suggestion, got %d", response.Total)
	}
	best := response.Suggestions[0].Candidates[0]
	if best.Group != domain.GroupBedneni {
		t.Errorf("expected best candidate %s, got %s", domain.GroupBedneni, best.Group)
	}
}

func TestSuggest_ThresholdFiltersAll(t *testing.T) {
	handler := setupTestHandler(classifier.DefaultWorkGroupRules, nil)
	router := setupRouter(handler)

	items := []*domain.Item{
		pricedItem(1, "762332110", "Bednění stěn", "m2"),
	}

	w := postJSON(t, router, "/api/v1/classify/suggest", SuggestRequest{Items: items, Threshold: 90})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response SuggestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Total != 0 {
		t.Errorf("expected 0 suggestions above threshold 90, got %d", response.Total)
	}
}

func TestStats_Success(t *testing.T) {
	handler := setupTestHandler(classifier.DefaultWorkGroupRules, nil)
	router := setupRouter(handler)

	skupina := domain.GroupPiloty
	items := sampleItems()
	items[2].Skupina = &skupina

	w := postJSON(t, router, "/api/v1/stats", ItemsRequest{Items: items})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response domain.StatsResult
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if response.Total != 2 {
		t.Errorf("expected 2 main items, got %d", response.Total)
	}
	if response.Classified != 1 {
		t.Errorf("expected 1 classified, got %d", response.Classified)
	}
}

func TestRules_DisabledStoreReturns503(t *testing.T) {
	handler := setupTestHandler(classifier.DefaultWorkGroupRules, nil)
	router := setupRouter(handler)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/rules", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestRules_CreateAndList(t *testing.T) {
	repo := setupRulesRepo(t)
	handler := setupTestHandler(nil, repo)
	router := setupRouter(handler)

	create := RuleRequest{
		WorkGroup:    string(domain.GroupIzolace),
		Include:      []string{"hydroizolace", "izolace proti vode"},
		BoostUnits:   []string{"m2"},
		BasePriority: 10,
	}

	w := postJSON(t, router, "/api/v1/rules", create)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var created RuleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected assigned rule id")
	}
	if !created.Enabled {
		t.Error("expected rule enabled by default")
	}

	w = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/rules", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var list RulesListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("expected 1 rule, got %d", list.Total)
	}
}

func TestRules_CreateReloadsScorer(t *testing.T) {
	repo := setupRulesRepo(t)
	// Scorer starts with an empty rule table.
	handler := setupTestHandler(nil, repo)
	router := setupRouter(handler)

	items := []*domain.Item{
		pricedItem(1, "711141559", "Hydroizolace asfaltovými pásy", "m2"),
	}

	w := postJSON(t, router, "/api/v1/classify/groups", ClassifyGroupsRequest{Items: items})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var before processor.ProcessResult
	if err := json.Unmarshal(w.Body.Bytes(), &before); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if before.Groups.Classified != 0 {
		t.Fatalf("expected nothing classified before rule exists, got %d", before.Groups.Classified)
	}

	create := RuleRequest{
		WorkGroup: string(domain.GroupIzolace),
		Include:   []string{"hydroizolace"},
	}
	if w = postJSON(t, router, "/api/v1/rules", create); w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = postJSON(t, router, "/api/v1/classify/groups", ClassifyGroupsRequest{Items: items})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var after processor.ProcessResult
	if err := json.Unmarshal(w.Body.Bytes(), &after); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if after.Groups.Classified != 1 {
		t.Errorf("expected 1 classified after rule creation, got %d (by group %v)",
			after.Groups.Classified, after.Groups.ByGroup)
	}
}

func TestRules_CreateRejectsUnknownGroup(t *testing.T) {
	repo := setupRulesRepo(t)
	handler := setupTestHandler(nil, repo)
	router := setupRouter(handler)

	create := RuleRequest{
		WorkGroup: "nonexistent_group",
		Include:   []string{"foo"},
	}

	w := postJSON(t, router, "/api/v1/rules", create)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestRules_UpdateMissingReturns404(t *testing.T) {
	repo := setupRulesRepo(t)
	handler := setupTestHandler(nil, repo)
	router := setupRouter(handler)

	update := RuleRequest{
		WorkGroup: string(domain.GroupPiloty),
		Include:   []string{"pilota"},
	}

	body, _ := json.Marshal(update)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/rules/42", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestRules_Delete(t *testing.T) {
	repo := setupRulesRepo(t)
	handler := setupTestHandler(nil, repo)
	router := setupRouter(handler)

	create := RuleRequest{
		WorkGroup: string(domain.GroupBedneni),
		Include:   []string{"bedneni"},
	}
	w := postJSON(t, router, "/api/v1/rules", create)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	var created RuleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	w = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/rules/%d", created.ID), nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/rules/%d", created.ID), nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for repeated delete, got %d", w.Code)
	}
}

func TestJWT_ProtectedRoutesRejectMissingToken(t *testing.T) {
	handler := setupTestHandler(classifier.DefaultWorkGroupRules, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupServiceRoutes(router, handler, "test-secret", nil)

	w := postJSON(t, router, "/api/v1/classify/rows", ItemsRequest{Items: sampleItems()})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}
