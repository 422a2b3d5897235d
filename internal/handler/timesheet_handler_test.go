package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/timecard/internal/middleware"
	"github.com/hitoshi/timecard/internal/model"
	"github.com/hitoshi/timecard/internal/timesheet"
)

// --- モック定義 ---

// mockTimesheetService はTimesheetServiceInterfaceのモック実装。
type mockTimesheetService struct {
	getFn         func(ctx context.Context, userID, id string) (*model.Timesheet, error)
	listFn        func(ctx context.Context, userID string, opts timesheet.ListOptions) (timesheet.ListResult, error)
	getWeekViewFn func(ctx context.Context, userID, id string) (*timesheet.WeekView, error)
	createFn      func(ctx context.Context, userID string, weekNumber int, dateRange string, entries []model.TimesheetEntry) (*model.Timesheet, error)
	updateFn      func(ctx context.Context, userID, id string, patch model.TimesheetPatch) (*model.Timesheet, error)
	deleteFn      func(ctx context.Context, userID, id string) error
}

func (m *mockTimesheetService) Get(ctx context.Context, userID, id string) (*model.Timesheet, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockTimesheetService) List(ctx context.Context, userID string, opts timesheet.ListOptions) (timesheet.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, opts)
	}
	return timesheet.ListResult{Rows: []model.Timesheet{}}, nil
}

func (m *mockTimesheetService) GetWeekView(ctx context.Context, userID, id string) (*timesheet.WeekView, error) {
	if m.getWeekViewFn != nil {
		return m.getWeekViewFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockTimesheetService) Create(ctx context.Context, userID string, weekNumber int, dateRange string, entries []model.TimesheetEntry) (*model.Timesheet, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, weekNumber, dateRange, entries)
	}
	return nil, nil
}

func (m *mockTimesheetService) Update(ctx context.Context, userID, id string, patch model.TimesheetPatch) (*model.Timesheet, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, patch)
	}
	return nil, nil
}

func (m *mockTimesheetService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

// --- テストヘルパー ---

// withUserID はテスト用にリクエストコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func testHandlerConfig() TimesheetHandlerConfig {
	return TimesheetHandlerConfig{PageSizeDefault: 5, PageSizeMax: 100}
}

func sampleTimesheet() *model.Timesheet {
	return &model.Timesheet{
		ID:         "ts-1",
		WeekNumber: 2,
		DateRange:  "2025-01-06 - 2025-01-10",
		Status:     model.StatusCompleted,
		UserID:     "user-1",
		Entries: []model.TimesheetEntry{
			{ID: "e1", Date: "2025-01-06", Hours: 40, Project: "Web App"},
		},
	}
}

// --- GET /timesheets テスト ---

func TestTimesheetHandler_List_Success(t *testing.T) {
	svc := &mockTimesheetService{
		listFn: func(ctx context.Context, userID string, opts timesheet.ListOptions) (timesheet.ListResult, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return timesheet.ListResult{
				Rows:       []model.Timesheet{*sampleTimesheet()},
				TotalPages: 1,
				TotalCount: 1,
			}, nil
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/timesheets", nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if int(result["totalCount"].(float64)) != 1 {
		t.Errorf("totalCount = %v, want 1", result["totalCount"])
	}
	if int(result["page"].(float64)) != 1 {
		t.Errorf("page = %v, want 1", result["page"])
	}
	timesheets := result["timesheets"].([]interface{})
	if len(timesheets) != 1 {
		t.Fatalf("timesheets length = %d, want 1", len(timesheets))
	}
}

func TestTimesheetHandler_List_QueryParams(t *testing.T) {
	var gotOpts timesheet.ListOptions
	svc := &mockTimesheetService{
		listFn: func(ctx context.Context, userID string, opts timesheet.ListOptions) (timesheet.ListResult, error) {
			gotOpts = opts
			return timesheet.ListResult{Rows: []model.Timesheet{}}, nil
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	url := "/timesheets?status=INCOMPLETE&dateRange=2025-01-06+-+2025-01-10&dateRange=2025-01-13+-+2025-01-17&sort=weekNumber&dir=desc&page=2&pageSize=10"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotOpts.StatusFilter != model.StatusIncomplete {
		t.Errorf("StatusFilter = %q, want %q", gotOpts.StatusFilter, model.StatusIncomplete)
	}
	if len(gotOpts.DateRangeFilter) != 2 {
		t.Errorf("DateRangeFilter = %v, want 2 ranges", gotOpts.DateRangeFilter)
	}
	if gotOpts.SortField != timesheet.SortFieldWeekNumber {
		t.Errorf("SortField = %q, want %q", gotOpts.SortField, timesheet.SortFieldWeekNumber)
	}
	if gotOpts.SortDir != timesheet.SortDesc {
		t.Errorf("SortDir = %q, want %q", gotOpts.SortDir, timesheet.SortDesc)
	}
	if gotOpts.Page != 2 {
		t.Errorf("Page = %d, want 2", gotOpts.Page)
	}
	if gotOpts.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", gotOpts.PageSize)
	}
}

func TestTimesheetHandler_List_Defaults(t *testing.T) {
	var gotOpts timesheet.ListOptions
	svc := &mockTimesheetService{
		listFn: func(ctx context.Context, userID string, opts timesheet.ListOptions) (timesheet.ListResult, error) {
			gotOpts = opts
			return timesheet.ListResult{Rows: []model.Timesheet{}}, nil
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	// 無効な数値は黙って既定値に落とす
	req := httptest.NewRequest(http.MethodGet, "/timesheets?page=abc&pageSize=-1", nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if gotOpts.Page != 1 {
		t.Errorf("Page = %d, want 1", gotOpts.Page)
	}
	if gotOpts.PageSize != 5 {
		t.Errorf("PageSize = %d, want 5 (default)", gotOpts.PageSize)
	}
	if gotOpts.SortDir != timesheet.SortAsc {
		t.Errorf("SortDir = %q, want %q", gotOpts.SortDir, timesheet.SortAsc)
	}
}

func TestTimesheetHandler_List_PageSizeCapped(t *testing.T) {
	var gotOpts timesheet.ListOptions
	svc := &mockTimesheetService{
		listFn: func(ctx context.Context, userID string, opts timesheet.ListOptions) (timesheet.ListResult, error) {
			gotOpts = opts
			return timesheet.ListResult{Rows: []model.Timesheet{}}, nil
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/timesheets?pageSize=9999", nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if gotOpts.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100 (capped)", gotOpts.PageSize)
	}
}

func TestTimesheetHandler_List_InvalidStatus_ReturnsBadRequest(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{}, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/timesheets?status=DONE", nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestTimesheetHandler_List_InvalidSortField_ReturnsBadRequest(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{}, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/timesheets?sort=createdAt", nil)
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestTimesheetHandler_List_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{}, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/timesheets", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// --- POST /timesheets テスト ---

func TestTimesheetHandler_Create_Success(t *testing.T) {
	svc := &mockTimesheetService{
		createFn: func(ctx context.Context, userID string, weekNumber int, dateRange string, entries []model.TimesheetEntry) (*model.Timesheet, error) {
			if weekNumber != 2 {
				t.Errorf("weekNumber = %d, want 2", weekNumber)
			}
			if dateRange != "2025-01-06 - 2025-01-10" {
				t.Errorf("dateRange = %q, want %q", dateRange, "2025-01-06 - 2025-01-10")
			}
			return sampleTimesheet(), nil
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	body := `{"weekNumber":2,"dateRange":"2025-01-06 - 2025-01-10"}`
	req := httptest.NewRequest(http.MethodPost, "/timesheets", bytes.NewBufferString(body))
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["id"] != "ts-1" {
		t.Errorf("id = %v, want %q", result["id"], "ts-1")
	}
}

func TestTimesheetHandler_Create_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{}, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/timesheets", bytes.NewBufferString("{not json"))
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestTimesheetHandler_Create_ValidationError(t *testing.T) {
	svc := &mockTimesheetService{
		createFn: func(ctx context.Context, userID string, weekNumber int, dateRange string, entries []model.TimesheetEntry) (*model.Timesheet, error) {
			return nil, model.NewValidationError(map[string]string{
				"weekNumber": "Week number is required and must be a valid number",
			})
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/timesheets", bytes.NewBufferString(`{}`))
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var result struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Error != "Validation failed" {
		t.Errorf("error = %q, want %q", result.Error, "Validation failed")
	}
	if _, ok := result.Fields["weekNumber"]; !ok {
		t.Errorf("fields missing weekNumber key: %v", result.Fields)
	}
}

// --- GET /timesheet/{id} テスト ---

func TestTimesheetHandler_Get_Success(t *testing.T) {
	svc := &mockTimesheetService{
		getFn: func(ctx context.Context, userID, id string) (*model.Timesheet, error) {
			if id != "ts-1" {
				t.Errorf("id = %q, want %q", id, "ts-1")
			}
			return sampleTimesheet(), nil
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/timesheet/ts-1", nil)
	req = withUserID(req, "user-1")
	req = withChiURLParam(req, "id", "ts-1")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["status"] != "COMPLETED" {
		t.Errorf("status field = %v, want %q", result["status"], "COMPLETED")
	}
}

func TestTimesheetHandler_Get_NotFound_ExactBody(t *testing.T) {
	svc := &mockTimesheetService{
		getFn: func(ctx context.Context, userID, id string) (*model.Timesheet, error) {
			return nil, model.NewTimesheetNotFoundError()
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/timesheet/no-such-id", nil)
	req = withUserID(req, "user-1")
	req = withChiURLParam(req, "id", "no-such-id")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	// ボディはAPI契約で固定
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["error"] != "Timesheet not found" {
		t.Errorf("error = %q, want %q", result["error"], "Timesheet not found")
	}
}

// --- GET /timesheet/{id}/week テスト ---

func TestTimesheetHandler_GetWeekView_Success(t *testing.T) {
	svc := &mockTimesheetService{
		getWeekViewFn: func(ctx context.Context, userID, id string) (*timesheet.WeekView, error) {
			return &timesheet.WeekView{
				Timesheet: *sampleTimesheet(),
				Grid: timesheet.WeekGrid{
					Days:      []string{"2025-01-06", "2025-01-07", "2025-01-08", "2025-01-09", "2025-01-10"},
					Entries:   map[string][]model.TimesheetEntry{},
					Unmatched: []model.TimesheetEntry{},
				},
				TotalHours: 40,
				Progress:   100,
			}, nil
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/timesheet/ts-1/week", nil)
	req = withUserID(req, "user-1")
	req = withChiURLParam(req, "id", "ts-1")
	w := httptest.NewRecorder()

	h.GetWeekView(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	grid := result["grid"].(map[string]interface{})
	days := grid["days"].([]interface{})
	if len(days) != 5 {
		t.Errorf("days length = %d, want 5", len(days))
	}
	if int(result["progress"].(float64)) != 100 {
		t.Errorf("progress = %v, want 100", result["progress"])
	}
}

// --- PUT /timesheet/{id} テスト ---

func TestTimesheetHandler_Update_Success(t *testing.T) {
	var gotPatch model.TimesheetPatch
	svc := &mockTimesheetService{
		updateFn: func(ctx context.Context, userID, id string, patch model.TimesheetPatch) (*model.Timesheet, error) {
			gotPatch = patch
			return sampleTimesheet(), nil
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	body := `{"weekNumber":5}`
	req := httptest.NewRequest(http.MethodPut, "/timesheet/ts-1", bytes.NewBufferString(body))
	req = withUserID(req, "user-1")
	req = withChiURLParam(req, "id", "ts-1")
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotPatch.WeekNumber == nil || *gotPatch.WeekNumber != 5 {
		t.Errorf("patch.WeekNumber = %v, want 5", gotPatch.WeekNumber)
	}
	// 送られていないフィールドはnilのまま
	if gotPatch.DateRange != nil {
		t.Errorf("patch.DateRange = %v, want nil", gotPatch.DateRange)
	}
	if gotPatch.Entries != nil {
		t.Errorf("patch.Entries = %v, want nil", gotPatch.Entries)
	}
}

func TestTimesheetHandler_Update_NotFound(t *testing.T) {
	svc := &mockTimesheetService{
		updateFn: func(ctx context.Context, userID, id string, patch model.TimesheetPatch) (*model.Timesheet, error) {
			return nil, model.NewTimesheetNotFoundError()
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodPut, "/timesheet/no-such-id", bytes.NewBufferString(`{"weekNumber":5}`))
	req = withUserID(req, "user-1")
	req = withChiURLParam(req, "id", "no-such-id")
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- DELETE /timesheet/{id} テスト ---

func TestTimesheetHandler_Delete_Success_ExactBody(t *testing.T) {
	svc := &mockTimesheetService{
		deleteFn: func(ctx context.Context, userID, id string) error {
			return nil
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodDelete, "/timesheet/ts-1", nil)
	req = withUserID(req, "user-1")
	req = withChiURLParam(req, "id", "ts-1")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	// 削除成功は204ではなく200+確認メッセージ
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["message"] != "Timesheet deleted successfully" {
		t.Errorf("message = %q, want %q", result["message"], "Timesheet deleted successfully")
	}
}

func TestTimesheetHandler_Delete_NotFound(t *testing.T) {
	svc := &mockTimesheetService{
		deleteFn: func(ctx context.Context, userID, id string) error {
			return model.NewTimesheetNotFoundError()
		},
	}

	h := NewTimesheetHandler(svc, testHandlerConfig(), nil)

	req := httptest.NewRequest(http.MethodDelete, "/timesheet/ts-1", nil)
	req = withUserID(req, "user-1")
	req = withChiURLParam(req, "id", "ts-1")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
