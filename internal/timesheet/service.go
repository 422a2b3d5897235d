package timesheet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/timecard/internal/model"
	"github.com/hitoshi/timecard/internal/repository"
)

// MutationRecorder はタイムシート変更操作のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type MutationRecorder interface {
	RecordTimesheetMutation(op string)
}

// nopRecorder はメトリクス未接続時のフォールバック。
type nopRecorder struct{}

func (nopRecorder) RecordTimesheetMutation(string) {}

// Service はタイムシートのビジネスロジックを提供する。
// ステータスは保存値を信用せず、読み出し・書き込みのたびに
// エントリから導出し直す。
type Service struct {
	repo      repository.TimesheetRepository
	validator *Validator
	recorder  MutationRecorder
}

// NewService はServiceを生成する。
// recorderにnilを渡すとメトリクス記録は無効になる。
func NewService(repo repository.TimesheetRepository, recorder MutationRecorder) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		repo:      repo,
		validator: NewValidator(),
		recorder:  recorder,
	}
}

// Get は指定IDのタイムシートを取得する。
// 見つからない場合はTIMESHEET_NOT_FOUNDを返す。他ユーザーの所有物も
// 存在を漏らさないよう同じTIMESHEET_NOT_FOUNDとして扱う。
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Timesheet, error) {
	ts, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find timesheet: %w", err)
	}
	if ts == nil {
		return nil, model.NewTimesheetNotFoundError()
	}
	if ts.UserID != userID {
		return nil, model.NewTimesheetNotFoundError()
	}

	ts.Status = DeriveStatus(ts.Entries)
	return ts, nil
}

// List は認証ユーザーのタイムシート一覧をフィルタ・ソート・
// ページネーション適用済みで返す。
func (s *Service) List(ctx context.Context, userID string, opts ListOptions) (ListResult, error) {
	timesheets, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list timesheets: %w", err)
	}

	rows := make([]model.Timesheet, len(timesheets))
	for i, ts := range timesheets {
		ts.Status = DeriveStatus(ts.Entries)
		rows[i] = ts
	}

	return DeriveVisibleRows(rows, opts), nil
}

// WeekView は詳細ビュー用の週グリッドを返す。
type WeekView struct {
	Timesheet  model.Timesheet `json:"timesheet"`
	Grid       WeekGrid        `json:"grid"`
	TotalHours float64         `json:"totalHours"`
	Progress   int             `json:"progress"` // 所定労働時間に対する進捗率（0〜100）
}

// GetWeekView は指定IDのタイムシートを週グリッド展開して返す。
// 日付範囲が解析できない保存済みレコードに対してはINVALID_DATE_RANGEを返す。
func (s *Service) GetWeekView(ctx context.Context, userID, id string) (*WeekView, error) {
	ts, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	r, err := ParseDateRange(ts.DateRange)
	if err != nil {
		return nil, err
	}

	total := TotalHours(ts.Entries)
	progress := int(total / fullWeekHours * 100)
	if progress > 100 {
		progress = 100
	}

	return &WeekView{
		Timesheet:  *ts,
		Grid:       BuildWeekGrid(r, ts.Entries),
		TotalHours: total,
		Progress:   progress,
	}, nil
}

// Create は新しいタイムシートを作成する。
// IDは常に新規採番され、作成は冪等ではない。entriesがnilの場合は
// 空列で作成され、ステータスはMISSINGと導出される。
func (s *Service) Create(ctx context.Context, userID string, weekNumber int, dateRange string, entries []model.TimesheetEntry) (*model.Timesheet, error) {
	if err := s.validator.ValidateTimesheet(weekNumber, dateRange, entries); err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []model.TimesheetEntry{}
	}
	entries = s.prepareEntries(entries)

	now := time.Now()
	ts := &model.Timesheet{
		ID:         uuid.New().String(),
		WeekNumber: weekNumber,
		DateRange:  dateRange,
		Status:     DeriveStatus(entries),
		UserID:     userID,
		Entries:    entries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, ts); err != nil {
		return nil, fmt.Errorf("failed to create timesheet: %w", err)
	}

	s.recorder.RecordTimesheetMutation("create")
	slog.Info("timesheet created",
		slog.String("timesheet_id", ts.ID),
		slog.String("user_id", userID),
		slog.Int("week_number", weekNumber),
	)

	return ts, nil
}

// Update は部分更新をフィールド単位で適用する。
// nilフィールドは変更しない。Entriesは差分ではなく全置換の単位であり、
// 呼び出し側は常に望む完全なエントリ列を送る。
// クライアントが送ってきたステータスは無視し、常に導出値で上書きする。
func (s *Service) Update(ctx context.Context, userID, id string, patch model.TimesheetPatch) (*model.Timesheet, error) {
	ts, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find timesheet: %w", err)
	}
	if ts == nil {
		return nil, model.NewTimesheetNotFoundError()
	}
	if ts.UserID != userID {
		return nil, model.NewTimesheetNotFoundError()
	}

	weekNumber := ts.WeekNumber
	if patch.WeekNumber != nil {
		weekNumber = *patch.WeekNumber
	}
	dateRange := ts.DateRange
	if patch.DateRange != nil {
		dateRange = *patch.DateRange
	}
	entries := ts.Entries
	if patch.Entries != nil {
		entries = *patch.Entries
	}

	if err := s.validator.ValidateTimesheet(weekNumber, dateRange, entries); err != nil {
		return nil, err
	}

	ts.WeekNumber = weekNumber
	ts.DateRange = dateRange
	ts.Entries = s.prepareEntries(entries)
	ts.Status = DeriveStatus(ts.Entries)
	ts.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, ts); err != nil {
		return nil, fmt.Errorf("failed to update timesheet: %w", err)
	}

	s.recorder.RecordTimesheetMutation("update")
	slog.Info("timesheet updated",
		slog.String("timesheet_id", ts.ID),
		slog.String("user_id", userID),
		slog.String("status", string(ts.Status)),
	)

	return ts, nil
}

// Delete は指定IDのタイムシートを削除する。
// 2回目以降の同一削除はTIMESHEET_NOT_FOUNDを返すno-op。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	ts, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find timesheet: %w", err)
	}
	if ts == nil {
		return model.NewTimesheetNotFoundError()
	}
	if ts.UserID != userID {
		return model.NewTimesheetNotFoundError()
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}
	if !deleted {
		return model.NewTimesheetNotFoundError()
	}

	s.recorder.RecordTimesheetMutation("delete")
	slog.Info("timesheet deleted",
		slog.String("timesheet_id", id),
		slog.String("user_id", userID),
	)

	return nil
}

// prepareEntries はエントリ列をサニタイズし、ID未採番のエントリに
// 「日付-UUID」形式の複合IDを割り当てる。
func (s *Service) prepareEntries(entries []model.TimesheetEntry) []model.TimesheetEntry {
	out := s.validator.SanitizeEntries(entries)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = fmt.Sprintf("%s-%s", out[i].Date, uuid.New().String())
		}
	}
	return out
}
