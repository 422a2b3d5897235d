package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/timecard/internal/middleware"
	"github.com/hitoshi/timecard/internal/model"
	"github.com/hitoshi/timecard/internal/timesheet"
)

// TimesheetServiceInterface はタイムシートハンドラーが必要とするサービスインターフェース。
type TimesheetServiceInterface interface {
	// Get は指定IDのタイムシートを返す。
	Get(ctx context.Context, userID, id string) (*model.Timesheet, error)
	// List は一覧をフィルタ・ソート・ページネーション付きで返す。
	List(ctx context.Context, userID string, opts timesheet.ListOptions) (timesheet.ListResult, error)
	// GetWeekView は週グリッド展開済みの詳細ビューを返す。
	GetWeekView(ctx context.Context, userID, id string) (*timesheet.WeekView, error)
	// Create は新しいタイムシートを作成する。
	Create(ctx context.Context, userID string, weekNumber int, dateRange string, entries []model.TimesheetEntry) (*model.Timesheet, error)
	// Update は部分更新を適用する。
	Update(ctx context.Context, userID, id string, patch model.TimesheetPatch) (*model.Timesheet, error)
	// Delete は指定IDのタイムシートを削除する。
	Delete(ctx context.Context, userID, id string) error
}

// RowsRecorder は一覧表示行数のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type RowsRecorder interface {
	RecordRowsListed(count int)
}

// TimesheetHandlerConfig はタイムシートハンドラーの設定。
type TimesheetHandlerConfig struct {
	PageSizeDefault int // pageSize未指定時の既定値
	PageSizeMax     int // pageSizeの上限
}

// TimesheetHandler はタイムシート管理のHTTPハンドラー。
type TimesheetHandler struct {
	service  TimesheetServiceInterface
	config   TimesheetHandlerConfig
	recorder RowsRecorder
}

// NewTimesheetHandler はTimesheetHandlerを生成する。
// recorderにnilを渡すとメトリクス記録は無効になる。
func NewTimesheetHandler(service TimesheetServiceInterface, config TimesheetHandlerConfig, recorder RowsRecorder) *TimesheetHandler {
	return &TimesheetHandler{
		service:  service,
		config:   config,
		recorder: recorder,
	}
}

// --- リクエスト・レスポンス型 ---

// createTimesheetRequest はタイムシート作成リクエストのボディ。
type createTimesheetRequest struct {
	WeekNumber int                     `json:"weekNumber"`
	DateRange  string                  `json:"dateRange"`
	Entries    []model.TimesheetEntry  `json:"entries,omitempty"`
}

// listResponse は一覧のレスポンス。
type listResponse struct {
	Timesheets []model.Timesheet `json:"timesheets"`
	TotalPages int               `json:"totalPages"`
	TotalCount int               `json:"totalCount"`
	Page       int               `json:"page"`
}

// deleteResponse は削除成功時のレスポンス。メッセージはAPI契約で固定。
type deleteResponse struct {
	Message string `json:"message"`
}

// List は認証ユーザーのタイムシート一覧を取得する。
// GET /timesheets?status=&dateRange=&sort=&dir=&page=&pageSize=
// dateRangeは繰り返し指定可能（集合として扱う）。
// フィルタまたはpageSizeだけを変更したリクエストはpageを送らないことで
// 1ページ目から表示し直す（staleなページ番号で空振りしない）。
func (h *TimesheetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	opts, apiErr := h.parseListOptions(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	result, err := h.service.List(r.Context(), userID, opts)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordRowsListed(len(result.Rows))
	}

	writeJSON(w, http.StatusOK, listResponse{
		Timesheets: result.Rows,
		TotalPages: result.TotalPages,
		TotalCount: result.TotalCount,
		Page:       opts.Page,
	})
}

// parseListOptions はクエリ文字列から一覧条件を組み立てる。
// 無効なステータス・ソートフィールドはエラー、無効な数値は既定値に落とす。
func (h *TimesheetHandler) parseListOptions(r *http.Request) (timesheet.ListOptions, *model.APIError) {
	q := r.URL.Query()

	opts := timesheet.ListOptions{
		DateRangeFilter: q["dateRange"],
		SortDir:         timesheet.SortAsc,
		Page:            1,
		PageSize:        h.config.PageSizeDefault,
	}

	if s := q.Get("status"); s != "" {
		status := model.Status(s)
		if !model.ValidStatus(status) {
			return opts, model.NewInvalidStatusError(s)
		}
		opts.StatusFilter = status
	}

	if f := q.Get("sort"); f != "" {
		field := timesheet.SortField(f)
		if !timesheet.ValidSortField(field) {
			return opts, model.NewInvalidSortFieldError(f)
		}
		opts.SortField = field
	}

	if q.Get("dir") == string(timesheet.SortDesc) {
		opts.SortDir = timesheet.SortDesc
	}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p >= 1 {
		opts.Page = p
	}

	if ps, err := strconv.Atoi(q.Get("pageSize")); err == nil && ps >= 1 {
		opts.PageSize = ps
		if opts.PageSize > h.config.PageSizeMax {
			opts.PageSize = h.config.PageSizeMax
		}
	}

	return opts, nil
}

// Create は新しいタイムシートを作成する。
// POST /timesheets
func (h *TimesheetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(map[string]string{
			"body": "Request body must be valid JSON",
		}))
		return
	}

	ts, err := h.service.Create(r.Context(), userID, req.WeekNumber, req.DateRange, req.Entries)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ts)
}

// Get はタイムシート詳細を取得する。
// GET /timesheet/{id}
func (h *TimesheetHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	ts, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ts)
}

// GetWeekView は週グリッド展開済みの詳細ビューを取得する。
// GET /timesheet/{id}/week
func (h *TimesheetHandler) GetWeekView(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	view, err := h.service.GetWeekView(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Update はタイムシートを部分更新する。
// PUT /timesheet/{id}
// ボディはTimesheetPatch。statusを送っても無視される（常に導出値を使う）。
func (h *TimesheetHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	var patch model.TimesheetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(map[string]string{
			"body": "Request body must be valid JSON",
		}))
		return
	}

	ts, err := h.service.Update(r.Context(), userID, id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ts)
}

// Delete はタイムシートを削除する。
// DELETE /timesheet/{id}
// 同じIDへの2回目の削除は404を返す（no-op）。
func (h *TimesheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Message: "Timesheet deleted successfully"})
}
