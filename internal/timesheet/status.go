// Package timesheet はタイムシートのドメインロジックを提供する。
// ステータス導出、週グリッド展開、一覧のフィルタ・ソート・ページネーション、
// および作成・更新・削除のビジネスロジックを含む。
package timesheet

import "github.com/hitoshi/timecard/internal/model"

// fullWeekHours は1週間の所定労働時間。
// 合計がこの値以上でCOMPLETEDとなる。
const fullWeekHours = 40.0

// DeriveStatus はエントリ列から表示ステータスを導出する。
// 合計0時間でMISSING、40時間未満でINCOMPLETE、40時間以上でCOMPLETED。
// 副作用はなく、空列を含む任意の有限列に対して全域。
func DeriveStatus(entries []model.TimesheetEntry) model.Status {
	var total float64
	for _, e := range entries {
		total += e.Hours
	}

	switch {
	case total == 0:
		return model.StatusMissing
	case total < fullWeekHours:
		return model.StatusIncomplete
	default:
		return model.StatusCompleted
	}
}

// TotalHours はエントリ列の合計時間を返す。
func TotalHours(entries []model.TimesheetEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Hours
	}
	return total
}
