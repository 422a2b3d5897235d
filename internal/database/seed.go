package database

import (
	"context"
	"fmt"

	"github.com/hitoshi/timecard/internal/fixture"
	"github.com/hitoshi/timecard/internal/repository"
)

// Seed はデモ用の初期データをリポジトリへ投入する。
// 既に同じメールアドレスのユーザーが存在する場合は何もしない（再実行可能）。
func Seed(ctx context.Context, userRepo repository.UserRepository, tsRepo repository.TimesheetRepository) error {
	users, err := fixture.Users()
	if err != nil {
		return fmt.Errorf("failed to build fixture users: %w", err)
	}

	existing, err := userRepo.FindByEmail(ctx, fixture.DemoUserEmail)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil
	}

	for i := range users {
		if err := userRepo.Create(ctx, &users[i]); err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}

	for _, ts := range fixture.Timesheets() {
		if err := tsRepo.Create(ctx, &ts); err != nil {
			return fmt.Errorf("failed to seed timesheet: %w", err)
		}
	}

	return nil
}
