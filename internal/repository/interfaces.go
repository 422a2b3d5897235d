// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/timecard/internal/model"
)

// ErrRecordGone は置換対象のレコードが既に存在しない場合に返される。
// 存在確認と更新の間に削除が割り込んだ場合にのみ起こり得る。
var ErrRecordGone = errors.New("record no longer exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// TimesheetRepository はタイムシートデータの永続化インターフェース。
// 更新はレコード全体の置換を単位とし、部分書き込みは発生しない。
type TimesheetRepository interface {
	// FindByID は指定IDのタイムシートを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Timesheet, error)

	// ListByUserID はユーザーの全タイムシートを作成順で返す。
	ListByUserID(ctx context.Context, userID string) ([]model.Timesheet, error)

	// Create はタイムシートを作成する。
	Create(ctx context.Context, ts *model.Timesheet) error

	// Update はタイムシートをレコード全体で置換する（last write wins）。
	// 対象が存在しない場合はErrRecordGoneを返す。
	Update(ctx context.Context, ts *model.Timesheet) error

	// Delete は指定IDのタイムシートを削除する。
	// 削除できた場合はtrue、見つからない場合はfalseを返す。
	Delete(ctx context.Context, id string) (bool, error)
}

// Pinger はヘルスチェック用のストア疎通確認インターフェース。
// sql.DBおよびメモリストアの両方が満たす。
type Pinger interface {
	Ping() error
}
