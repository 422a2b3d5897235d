// Package fixture は開発・デモ用の初期データを提供する。
// メモリバックエンドの起動時とseedサブコマンドの両方から使用する。
package fixture

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/timecard/internal/model"
)

// デモユーザーの認証情報。ログイン画面の案内にも使われる固定値。
const (
	DemoUserID    = "user-1"
	DemoUserEmail = "user@example.com"
	DemoPassword  = "password123"
)

// Users はデモユーザーのレコードを返す。
// パスワードハッシュは起動時に生成する（平文をレコードに残さない）。
func Users() ([]model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return []model.User{
		{
			ID:           DemoUserID,
			Email:        DemoUserEmail,
			Name:         "Jane Doe",
			PasswordHash: string(hash),
			CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}, nil
}

// Timesheets はデモユーザーのタイムシートを返す。
// 3つのステータス（COMPLETED、INCOMPLETE、MISSING）が一覧に揃うよう、
// 合計40時間・16時間・0時間の3週間分を用意する。
func Timesheets() []model.Timesheet {
	created := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	return []model.Timesheet{
		{
			ID:         "ts-1",
			WeekNumber: 2,
			DateRange:  "2025-01-06 - 2025-01-10",
			Status:     model.StatusCompleted,
			UserID:     DemoUserID,
			Entries: []model.TimesheetEntry{
				{ID: "2025-01-06-a", Date: "2025-01-06", Hours: 8, Description: "Sprint planning and backlog grooming", Project: "Web App"},
				{ID: "2025-01-07-a", Date: "2025-01-07", Hours: 8, Description: "Implement login flow", Project: "Web App"},
				{ID: "2025-01-08-a", Date: "2025-01-08", Hours: 8, Description: "REST endpoint pagination", Project: "API"},
				{ID: "2025-01-09-a", Date: "2025-01-09", Hours: 8, Description: "Code review and bugfixes", Project: "API"},
				{ID: "2025-01-10-a", Date: "2025-01-10", Hours: 8, Description: "Design sync and retrospective", Project: "Design"},
			},
			CreatedAt: created,
			UpdatedAt: created,
		},
		{
			ID:         "ts-2",
			WeekNumber: 3,
			DateRange:  "2025-01-13 - 2025-01-17",
			Status:     model.StatusIncomplete,
			UserID:     DemoUserID,
			Entries: []model.TimesheetEntry{
				{ID: "2025-01-13-a", Date: "2025-01-13", Hours: 8, Description: "Push notification prototype", Project: "Mobile App"},
				{ID: "2025-01-14-a", Date: "2025-01-14", Hours: 8, Description: "Offline sync investigation", Project: "Mobile App"},
			},
			CreatedAt: created.AddDate(0, 0, 7),
			UpdatedAt: created.AddDate(0, 0, 7),
		},
		{
			ID:         "ts-3",
			WeekNumber: 4,
			DateRange:  "2025-01-20 - 2025-01-24",
			Status:     model.StatusMissing,
			UserID:     DemoUserID,
			Entries:    []model.TimesheetEntry{},
			CreatedAt:  created.AddDate(0, 0, 14),
			UpdatedAt:  created.AddDate(0, 0, 14),
		},
	}
}
