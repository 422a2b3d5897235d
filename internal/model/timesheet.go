// Package model はドメインモデルを定義する。
package model

import "time"

// Status はタイムシートの表示ステータスを表す。
// エントリの合計時間から常に導出される計算値であり、
// 独立した真実の源として保存してはならない。
type Status string

const (
	// StatusCompleted は合計40時間以上の週を表す。
	StatusCompleted Status = "COMPLETED"
	// StatusIncomplete は0時間より多く40時間未満の週を表す。
	StatusIncomplete Status = "INCOMPLETE"
	// StatusMissing はエントリが存在しない（合計0時間の）週を表す。
	StatusMissing Status = "MISSING"
)

// ValidStatus はsが定義済みステータスのいずれかであるかを返す。
func ValidStatus(s Status) bool {
	switch s {
	case StatusCompleted, StatusIncomplete, StatusMissing:
		return true
	}
	return false
}

// TimesheetEntry はタイムシート内の1件の作業記録を表す。
// IDは作成時に採番され、所属タイムシート内で一意。
type TimesheetEntry struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"` // ISO-8601カレンダー日付（YYYY-MM-DD）
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
	Project     string  `json:"project"`
}

// Timesheet は1週間分のタイムシートを表す。
// Statusはentriesから導出した値をシリアライズ用に保持するだけで、
// 読み出しのたびに再計算される。
type Timesheet struct {
	ID         string           `json:"id"`
	WeekNumber int              `json:"weekNumber"`
	DateRange  string           `json:"dateRange"` // "YYYY-MM-DD - YYYY-MM-DD"
	Status     Status           `json:"status"`
	UserID     string           `json:"userId"`
	Entries    []TimesheetEntry `json:"entries"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// TimesheetPatch は部分更新で変更可能なフィールドを明示的に列挙する。
// nilフィールドは変更しない。Entriesは差分ではなく全置換の単位。
// クライアントがstatusを送ってきても反映しない（常に導出値を使う）。
type TimesheetPatch struct {
	WeekNumber *int              `json:"weekNumber,omitempty"`
	DateRange  *string           `json:"dateRange,omitempty"`
	Entries    *[]TimesheetEntry `json:"entries,omitempty"`
}

// Projects はエントリで選択可能なプロジェクトの列挙。
var Projects = []string{"Web App", "Mobile App", "API", "Design"}

// ValidProject はpが選択可能なプロジェクトであるかを返す。
func ValidProject(p string) bool {
	for _, v := range Projects {
		if v == p {
			return true
		}
	}
	return false
}
