package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/6610545011/cn331-project/internal/dto"
	"github.com/6610545011/cn331-project/internal/service"
	"github.com/6610545011/cn331-project/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Mock PlannerService ──

type mockPlannerService struct {
	addResult       *dto.AddSectionResponse
	addErr          error
	removeResult    *dto.RemoveSectionResponse
	removeErr       error
	timetableResult *dto.TimetableResponse
	timetableErr    error
	scheduleResult  *dto.CreateScheduleResponse
	scheduleErr     error
}

func (m *mockPlannerService) AddSection(_ context.Context, _, _ string) (*dto.AddSectionResponse, error) {
	return m.addResult, m.addErr
}
func (m *mockPlannerService) RemoveSection(_ context.Context, _, _ string) (*dto.RemoveSectionResponse, error) {
	return m.removeResult, m.removeErr
}
func (m *mockPlannerService) GetTimetable(_ context.Context, _ string) (*dto.TimetableResponse, error) {
	return m.timetableResult, m.timetableErr
}
func (m *mockPlannerService) AddSchedule(_ context.Context, _ *dto.CreateScheduleRequest) (*dto.CreateScheduleResponse, error) {
	return m.scheduleResult, m.scheduleErr
}

// ── Mock VariantService ──

type mockVariantService struct {
	createResult *dto.VariantResponse
	createErr    error
	listResult   []dto.VariantResponse
	listErr      error
	saveResult   *dto.VariantResponse
	saveErr      error
	loadResult   *dto.LoadVariantResponse
	loadErr      error
	deleteErr    error
	addResult    *dto.AddSectionResponse
	addErr       error
	removeResult *dto.RemoveSectionResponse
	removeErr    error
}

func (m *mockVariantService) Create(_ context.Context, _ string, _ *dto.CreateVariantRequest) (*dto.VariantResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockVariantService) List(_ context.Context, _ string) ([]dto.VariantResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockVariantService) SaveCurrent(_ context.Context, _ string, _ *dto.SaveVariantRequest) (*dto.VariantResponse, error) {
	return m.saveResult, m.saveErr
}
func (m *mockVariantService) Load(_ context.Context, _, _ string) (*dto.LoadVariantResponse, error) {
	return m.loadResult, m.loadErr
}
func (m *mockVariantService) Delete(_ context.Context, _, _ string) error {
	return m.deleteErr
}
func (m *mockVariantService) AddSection(_ context.Context, _, _, _ string) (*dto.AddSectionResponse, error) {
	return m.addResult, m.addErr
}
func (m *mockVariantService) RemoveSection(_ context.Context, _, _, _ string) (*dto.RemoveSectionResponse, error) {
	return m.removeResult, m.removeErr
}

// ── 测试辅助 ──

// fakeAuth 注入固定 user_id，模拟 JWT 中间件
func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) *response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	return &resp
}

// ── PlannerHandler ──

const testSectionID = "c6a8f0a2-3a7d-4b6e-9f1a-2b3c4d5e6f70"

func TestPlannerHandlerAddSection(t *testing.T) {
	svc := &mockPlannerService{
		addResult: &dto.AddSectionResponse{SectionID: testSectionID, TotalCredits: 3, Warning: "total credits after adding: 3 (recommended 9-22)"},
	}
	h := NewPlannerHandler(svc)

	r := gin.New()
	r.POST("/planner/sections/:id", fakeAuth("user-1"), h.AddSection)

	w := doRequest(r, http.MethodPost, "/planner/sections/"+testSectionID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("状态码期望 200, 实际 %d: %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if resp.Code != 0 {
		t.Errorf("业务码期望 0, 实际 %d", resp.Code)
	}
}

func TestPlannerHandlerAddSectionInvalidID(t *testing.T) {
	h := NewPlannerHandler(&mockPlannerService{})

	r := gin.New()
	r.POST("/planner/sections/:id", fakeAuth("user-1"), h.AddSection)

	w := doRequest(r, http.MethodPost, "/planner/sections/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("状态码期望 400, 实际 %d", w.Code)
	}
}

func TestPlannerHandlerAddSectionConflict(t *testing.T) {
	svc := &mockPlannerService{
		addErr: &service.ScheduleConflictError{
			Overlaps: []service.DayOverlap{{Day: 0, Slots: []int{4}}},
		},
	}
	h := NewPlannerHandler(svc)

	r := gin.New()
	r.POST("/planner/sections/:id", fakeAuth("user-1"), h.AddSection)

	w := doRequest(r, http.MethodPost, "/planner/sections/"+testSectionID, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("状态码期望 400, 实际 %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Code != 11001 {
		t.Errorf("业务码期望 11001, 实际 %d", resp.Code)
	}
	if !strings.Contains(resp.Details, "day 0 overlapping slots") {
		t.Errorf("details 应包含逐天冲突: %s", resp.Details)
	}
}

func TestPlannerHandlerAddSectionNotFound(t *testing.T) {
	h := NewPlannerHandler(&mockPlannerService{addErr: service.ErrSectionNotFound})

	r := gin.New()
	r.POST("/planner/sections/:id", fakeAuth("user-1"), h.AddSection)

	w := doRequest(r, http.MethodPost, "/planner/sections/"+testSectionID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("状态码期望 404, 实际 %d", w.Code)
	}
}

func TestPlannerHandlerUnauthorized(t *testing.T) {
	h := NewPlannerHandler(&mockPlannerService{})

	r := gin.New()
	r.GET("/planner", fakeAuth(""), h.GetTimetable)

	w := doRequest(r, http.MethodGet, "/planner", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("状态码期望 401, 实际 %d", w.Code)
	}
}

func TestPlannerHandlerAddScheduleValidation(t *testing.T) {
	h := NewPlannerHandler(&mockPlannerService{})

	r := gin.New()
	r.POST("/planner/schedules", fakeAuth("user-1"), h.AddSchedule)

	// 缺少 start_slot
	w := doRequest(r, http.MethodPost, "/planner/schedules", gin.H{
		"section_id": testSectionID,
		"day":        0,
		"span":       2,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("缺字段状态码期望 400, 实际 %d", w.Code)
	}

	// day 越界
	w = doRequest(r, http.MethodPost, "/planner/schedules", gin.H{
		"section_id": testSectionID,
		"day":        7,
		"start_slot": 0,
		"span":       2,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("day 越界状态码期望 400, 实际 %d", w.Code)
	}
}

func TestPlannerHandlerAddSchedule(t *testing.T) {
	svc := &mockPlannerService{
		scheduleResult: &dto.CreateScheduleResponse{
			ScheduleID: "sched-1", DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00",
		},
	}
	h := NewPlannerHandler(svc)

	r := gin.New()
	r.POST("/planner/schedules", fakeAuth("user-1"), h.AddSchedule)

	w := doRequest(r, http.MethodPost, "/planner/schedules", gin.H{
		"section_id": testSectionID,
		"day":        0,
		"start_slot": 2,
		"span":       2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("状态码期望 201, 实际 %d: %s", w.Code, w.Body.String())
	}
}

// ── VariantHandler ──

func TestVariantHandlerSaveCurrentCreditBound(t *testing.T) {
	h := NewVariantHandler(&mockVariantService{saveErr: &service.CreditBoundError{Total: 8}})

	r := gin.New()
	r.POST("/variants/save-current", fakeAuth("user-1"), h.SaveCurrent)

	w := doRequest(r, http.MethodPost, "/variants/save-current", gin.H{"name": "plan A"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("状态码期望 400, 实际 %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Code != 12002 {
		t.Errorf("业务码期望 12002, 实际 %d", resp.Code)
	}
	if !strings.Contains(resp.Details, "between 9 and 22") {
		t.Errorf("details 应包含硬性区间: %s", resp.Details)
	}
}

func TestVariantHandlerSaveCurrentMissingName(t *testing.T) {
	h := NewVariantHandler(&mockVariantService{})

	r := gin.New()
	r.POST("/variants/save-current", fakeAuth("user-1"), h.SaveCurrent)

	w := doRequest(r, http.MethodPost, "/variants/save-current", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("缺 name 状态码期望 400, 实际 %d", w.Code)
	}
}

func TestVariantHandlerLoadNotOwner(t *testing.T) {
	h := NewVariantHandler(&mockVariantService{loadErr: service.ErrVariantNotOwner})

	r := gin.New()
	r.POST("/variants/:id/load", fakeAuth("user-1"), h.Load)

	w := doRequest(r, http.MethodPost, "/variants/v-1/load", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("状态码期望 403, 实际 %d", w.Code)
	}
}

func TestVariantHandlerLoadNotFound(t *testing.T) {
	h := NewVariantHandler(&mockVariantService{loadErr: service.ErrVariantNotFound})

	r := gin.New()
	r.POST("/variants/:id/load", fakeAuth("user-1"), h.Load)

	w := doRequest(r, http.MethodPost, "/variants/missing/load", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("状态码期望 404, 实际 %d", w.Code)
	}
}

func TestVariantHandlerList(t *testing.T) {
	h := NewVariantHandler(&mockVariantService{
		listResult: []dto.VariantResponse{{ID: "v-1", Name: "plan A", TotalCredits: 9}},
	})

	r := gin.New()
	r.GET("/variants", fakeAuth("user-1"), h.List)

	w := doRequest(r, http.MethodGet, "/variants", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("状态码期望 200, 实际 %d", w.Code)
	}
}
