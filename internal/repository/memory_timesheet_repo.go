package repository

import (
	"context"
	"sync"

	"github.com/hitoshi/timecard/internal/model"
)

// MemoryTimesheetRepo はプロセス内メモリを使用したタイムシートリポジトリ。
// フラットなスライスで保持し、書き込みはレコード全体の置換で行う。
// プロセス再起動でデータは消える。
type MemoryTimesheetRepo struct {
	mu         sync.RWMutex
	timesheets []model.Timesheet
}

// NewMemoryTimesheetRepo はMemoryTimesheetRepoを生成する。
// seedに初期データを渡すと起動時に投入される。
func NewMemoryTimesheetRepo(seed []model.Timesheet) *MemoryTimesheetRepo {
	timesheets := make([]model.Timesheet, len(seed))
	for i, ts := range seed {
		timesheets[i] = cloneTimesheet(ts)
	}
	return &MemoryTimesheetRepo{timesheets: timesheets}
}

// FindByID は指定IDのタイムシートを取得する。見つからない場合はnilを返す。
func (r *MemoryTimesheetRepo) FindByID(_ context.Context, id string) (*model.Timesheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ts := range r.timesheets {
		if ts.ID == id {
			found := cloneTimesheet(ts)
			return &found, nil
		}
	}
	return nil, nil
}

// ListByUserID はユーザーの全タイムシートを作成順で返す。
func (r *MemoryTimesheetRepo) ListByUserID(_ context.Context, userID string) ([]model.Timesheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []model.Timesheet{}
	for _, ts := range r.timesheets {
		if ts.UserID == userID {
			result = append(result, cloneTimesheet(ts))
		}
	}
	return result, nil
}

// Create はタイムシートを作成する。
func (r *MemoryTimesheetRepo) Create(_ context.Context, ts *model.Timesheet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timesheets = append(r.timesheets, cloneTimesheet(*ts))
	return nil
}

// Update はタイムシートをレコード全体で置換する（last write wins）。
func (r *MemoryTimesheetRepo) Update(_ context.Context, ts *model.Timesheet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.timesheets {
		if r.timesheets[i].ID == ts.ID {
			r.timesheets[i] = cloneTimesheet(*ts)
			return nil
		}
	}
	return ErrRecordGone
}

// Delete は指定IDのタイムシートを削除する。
// 削除できた場合はtrue、見つからない場合はfalseを返す。
func (r *MemoryTimesheetRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.timesheets {
		if r.timesheets[i].ID == id {
			r.timesheets = append(r.timesheets[:i], r.timesheets[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Ping はヘルスチェック用の疎通確認。メモリストアでは常に成功する。
func (r *MemoryTimesheetRepo) Ping() error {
	return nil
}

// cloneTimesheet はエントリスライスを含む深い複製を返す。
// 呼び出し側とストアが同一スライスを共有しないようにする。
func cloneTimesheet(ts model.Timesheet) model.Timesheet {
	entries := make([]model.TimesheetEntry, len(ts.Entries))
	copy(entries, ts.Entries)
	ts.Entries = entries
	return ts
}
