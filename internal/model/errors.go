// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Messageはそのままクライアントへ返す文字列なので、内部事情を含めない。
// Fieldsはバリデーションエラー時のフィールド別メッセージ。
type APIError struct {
	Code     string            // エラーコード
	Message  string            // クライアント向けメッセージ
	Category string            // カテゴリ: auth, validation, timesheet, system
	Fields   map[string]string // フィールド別メッセージ（validationのみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeTimesheetNotFound  = "TIMESHEET_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInvalidDateRange   = "INVALID_DATE_RANGE"
	ErrCodeInvalidSortField   = "INVALID_SORT_FIELD"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
)

// NewTimesheetNotFoundError はタイムシート未検出エラーを生成する。
// メッセージ文字列はAPI契約で固定されている。
func NewTimesheetNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTimesheetNotFound,
		Message:  "Timesheet not found",
		Category: "timesheet",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "auth",
	}
}

// NewValidationError はフィールド別メッセージ付きのバリデーションエラーを生成する。
func NewValidationError(fields map[string]string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "Validation failed",
		Category: "validation",
		Fields:   fields,
	}
}

// NewInvalidDateRangeError は日付範囲の解析失敗エラーを生成する。
// 期待形式は "YYYY-MM-DD - YYYY-MM-DD"。
func NewInvalidDateRangeError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDateRange,
		Message:  fmt.Sprintf("Invalid date range: %s", reason),
		Category: "validation",
	}
}

// NewInvalidSortFieldError は無効なソートフィールドエラーを生成する。
func NewInvalidSortFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSortField,
		Message:  fmt.Sprintf("Invalid sort field: %s", field),
		Category: "validation",
	}
}

// NewInvalidStatusError は無効なステータスフィルタエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("Invalid status: %s", status),
		Category: "validation",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレスとパスワードのどちらが誤っているかは区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid email or password",
		Category: "auth",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication required",
		Category: "auth",
	}
}
