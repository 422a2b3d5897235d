package timesheet

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/timecard/internal/model"
)

// maxHoursPerEntry は1エントリに記録できる時間の上限（1日の長さ）。
const maxHoursPerEntry = 24.0

// Validator はタイムシートとエントリの入力検証を行う。
// 自由入力のテキストはWeb UIでそのまま描画されるため、
// 保存前にbluemondayのStrictPolicyでタグを全て除去する。
type Validator struct {
	sanitizer *bluemonday.Policy
}

// NewValidator はValidatorを生成する。
func NewValidator() *Validator {
	return &Validator{
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// ValidateTimesheet はタイムシートのフィールドを検証する。
// 問題があればフィールド別メッセージ付きのVALIDATION_FAILEDエラーを返す。
func (v *Validator) ValidateTimesheet(weekNumber int, dateRange string, entries []model.TimesheetEntry) error {
	fields := map[string]string{}

	if weekNumber < 1 {
		fields["weekNumber"] = "Week number is required and must be a valid number"
	}

	if strings.TrimSpace(dateRange) == "" {
		fields["dateRange"] = "Date range is required"
	} else if _, err := ParseDateRange(dateRange); err != nil {
		fields["dateRange"] = "Date range must be in YYYY-MM-DD - YYYY-MM-DD format"
	}

	v.validateEntries(entries, fields)

	if len(fields) > 0 {
		return model.NewValidationError(fields)
	}
	return nil
}

// validateEntries は各エントリの日付・時間・プロジェクトを検証し、
// 問題をfieldsへ "entries[i].field" キーで追記する。
func (v *Validator) validateEntries(entries []model.TimesheetEntry, fields map[string]string) {
	for i, e := range entries {
		if _, ok := NormalizeDate(e.Date); !ok {
			fields[fmt.Sprintf("entries[%d].date", i)] = "Date must be a valid ISO-8601 calendar date"
		}
		if e.Hours < 0 || e.Hours > maxHoursPerEntry {
			fields[fmt.Sprintf("entries[%d].hours", i)] = "Hours must be between 0 and 24"
		}
		if !model.ValidProject(e.Project) {
			fields[fmt.Sprintf("entries[%d].project", i)] = "Project must be one of: " + strings.Join(model.Projects, ", ")
		}
	}
}

// SanitizeEntries はエントリの自由入力テキストをサニタイズした複製を返す。
// 入力スライスは変更しない。
func (v *Validator) SanitizeEntries(entries []model.TimesheetEntry) []model.TimesheetEntry {
	out := make([]model.TimesheetEntry, len(entries))
	for i, e := range entries {
		e.Description = strings.TrimSpace(v.sanitizer.Sanitize(e.Description))
		out[i] = e
	}
	return out
}
