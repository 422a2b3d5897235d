package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/timecard/internal/model"
)

// PostgresTimesheetRepo はPostgreSQLを使用したタイムシートリポジトリ。
// エントリ列はJSONBカラムに丸ごと保存し、更新時も全置換する。
// 更新の単位がエントリ列全体であるというサービス層の契約と一致する。
type PostgresTimesheetRepo struct {
	db *sql.DB
}

// NewPostgresTimesheetRepo はPostgresTimesheetRepoを生成する。
func NewPostgresTimesheetRepo(db *sql.DB) *PostgresTimesheetRepo {
	return &PostgresTimesheetRepo{db: db}
}

// FindByID は指定IDのタイムシートを取得する。見つからない場合はnilを返す。
func (r *PostgresTimesheetRepo) FindByID(ctx context.Context, id string) (*model.Timesheet, error) {
	ts := &model.Timesheet{}
	var entriesJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT id, week_number, date_range, user_id, entries, created_at, updated_at
		 FROM timesheets WHERE id = $1`,
		id,
	).Scan(&ts.ID, &ts.WeekNumber, &ts.DateRange, &ts.UserID, &entriesJSON, &ts.CreatedAt, &ts.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find timesheet by ID: %w", err)
	}

	if err := json.Unmarshal(entriesJSON, &ts.Entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}

	return ts, nil
}

// ListByUserID はユーザーの全タイムシートを作成順で返す。
func (r *PostgresTimesheetRepo) ListByUserID(ctx context.Context, userID string) ([]model.Timesheet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, week_number, date_range, user_id, entries, created_at, updated_at
		 FROM timesheets WHERE user_id = $1 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	defer rows.Close()

	result := []model.Timesheet{}
	for rows.Next() {
		var ts model.Timesheet
		var entriesJSON []byte
		if err := rows.Scan(&ts.ID, &ts.WeekNumber, &ts.DateRange, &ts.UserID, &entriesJSON, &ts.CreatedAt, &ts.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		if err := json.Unmarshal(entriesJSON, &ts.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode entries: %w", err)
		}
		result = append(result, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timesheets: %w", err)
	}

	return result, nil
}

// Create はタイムシートを作成する。
func (r *PostgresTimesheetRepo) Create(ctx context.Context, ts *model.Timesheet) error {
	entriesJSON, err := json.Marshal(ts.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO timesheets (id, week_number, date_range, user_id, entries, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ts.ID, ts.WeekNumber, ts.DateRange, ts.UserID, entriesJSON, ts.CreatedAt, ts.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert timesheet: %w", err)
	}
	return nil
}

// Update はタイムシートをレコード全体で置換する（last write wins）。
func (r *PostgresTimesheetRepo) Update(ctx context.Context, ts *model.Timesheet) error {
	entriesJSON, err := json.Marshal(ts.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE timesheets
		 SET week_number = $2, date_range = $3, entries = $4, updated_at = $5
		 WHERE id = $1`,
		ts.ID, ts.WeekNumber, ts.DateRange, entriesJSON, ts.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update timesheet: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrRecordGone
	}
	return nil
}

// Delete は指定IDのタイムシートを削除する。
// 削除できた場合はtrue、見つからない場合はfalseを返す。
func (r *PostgresTimesheetRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM timesheets WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete timesheet: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}
