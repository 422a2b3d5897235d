// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// 作成後は不変として扱う。
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // bcryptハッシュ。レスポンスには含めない。
	CreatedAt    time.Time `json:"createdAt"`
}
