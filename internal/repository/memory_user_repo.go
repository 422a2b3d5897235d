package repository

import (
	"context"
	"sync"

	"github.com/hitoshi/timecard/internal/model"
)

// MemoryUserRepo はプロセス内メモリを使用したユーザーリポジトリ。
// プロセス再起動でデータは消える。開発・テスト用のデフォルトバックエンド。
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users []model.User
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
// seedに初期ユーザーを渡すと起動時に投入される。
func NewMemoryUserRepo(seed []model.User) *MemoryUserRepo {
	users := make([]model.User, len(seed))
	copy(users, seed)
	return &MemoryUserRepo{users: users}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

// Create はユーザーを作成する。
func (r *MemoryUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = append(r.users, *user)
	return nil
}

// Ping はヘルスチェック用の疎通確認。メモリストアでは常に成功する。
func (r *MemoryUserRepo) Ping() error {
	return nil
}
