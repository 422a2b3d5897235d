package timesheet

import (
	"sort"
	"time"

	"github.com/hitoshi/timecard/internal/model"
)

// SortField は一覧ビューのソート対象フィールドを表す。
type SortField string

const (
	// SortFieldNone はソートなし（入力順を保持）を表す。
	SortFieldNone SortField = ""
	// SortFieldWeekNumber は週番号の数値順ソート。
	SortFieldWeekNumber SortField = "weekNumber"
	// SortFieldDateRange は範囲の開始日のタイムスタンプ順ソート。
	SortFieldDateRange SortField = "dateRange"
	// SortFieldStatus は導出ステータスの辞書順ソート。
	SortFieldStatus SortField = "status"
)

// ValidSortField はfが定義済みソートフィールドのいずれかであるかを返す。
func ValidSortField(f SortField) bool {
	switch f {
	case SortFieldNone, SortFieldWeekNumber, SortFieldDateRange, SortFieldStatus:
		return true
	}
	return false
}

// SortDirection はソート方向を表す。
type SortDirection string

const (
	// SortAsc は昇順ソート。
	SortAsc SortDirection = "asc"
	// SortDesc は降順ソート。
	SortDesc SortDirection = "desc"
)

// ListOptions は一覧ビューのフィルタ・ソート・ページネーション条件を表す。
type ListOptions struct {
	// StatusFilter は導出ステータスでの絞り込み。空文字列で無効。
	StatusFilter model.Status
	// DateRangeFilter は日付範囲文字列の集合での絞り込み。空集合で無効。
	// StatusFilterとは常にAND条件。
	DateRangeFilter []string
	// SortField はソート対象。SortFieldNoneで入力順を保持する。
	SortField SortField
	// SortDir はソート方向。未指定はSortAscとして扱う。
	SortDir SortDirection
	// Page は1始まりのページ番号。
	Page int
	// PageSize は1ページあたりの行数。
	PageSize int
}

// ListResult は一覧ビューの1ページ分の結果を表す。
type ListResult struct {
	// Rows は表示対象の行。範囲外ページでは空スライス。
	Rows []model.Timesheet
	// TotalPages はフィルタ後の総ページ数。
	TotalPages int
	// TotalCount はフィルタ後の総件数。
	TotalCount int
}

// DeriveVisibleRows はフィルタ・ソート・ページネーションを合成して
// 表示対象の行スライスとページネーションメタデータを返す。
// 純粋関数であり入力スライスを変更しない。
//
// フィルタは連言（AND）。ソートは同値キーの相対順を保つ安定ソート。
// ステータスは保存値ではなく常にDeriveStatusの導出値で比較する。
// 範囲外のページは空の行スライスを返し、エラーにはしない。
func DeriveVisibleRows(timesheets []model.Timesheet, opts ListOptions) ListResult {
	filtered := make([]model.Timesheet, 0, len(timesheets))
	for _, ts := range timesheets {
		if opts.StatusFilter != "" && DeriveStatus(ts.Entries) != opts.StatusFilter {
			continue
		}
		if len(opts.DateRangeFilter) > 0 && !containsString(opts.DateRangeFilter, ts.DateRange) {
			continue
		}
		filtered = append(filtered, ts)
	}

	if opts.SortField != SortFieldNone {
		desc := opts.SortDir == SortDesc
		sort.SliceStable(filtered, func(i, j int) bool {
			if desc {
				return lessBy(opts.SortField, filtered[j], filtered[i])
			}
			return lessBy(opts.SortField, filtered[i], filtered[j])
		})
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 1
	}

	totalCount := len(filtered)
	totalPages := (totalCount + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	if start >= totalCount {
		return ListResult{Rows: []model.Timesheet{}, TotalPages: totalPages, TotalCount: totalCount}
	}
	if end > totalCount {
		end = totalCount
	}

	rows := make([]model.Timesheet, end-start)
	copy(rows, filtered[start:end])

	return ListResult{Rows: rows, TotalPages: totalPages, TotalCount: totalCount}
}

// lessBy は指定フィールドでaがbより小さいかを判定する。
func lessBy(field SortField, a, b model.Timesheet) bool {
	switch field {
	case SortFieldWeekNumber:
		return a.WeekNumber < b.WeekNumber
	case SortFieldDateRange:
		return rangeStartTime(a.DateRange).Before(rangeStartTime(b.DateRange))
	case SortFieldStatus:
		return string(DeriveStatus(a.Entries)) < string(DeriveStatus(b.Entries))
	}
	return false
}

// rangeStartTime は日付範囲の開始日のタイムスタンプを返す。
// 解析できない範囲はゼロ値とし、先頭に寄せる。
func rangeStartTime(dateRange string) time.Time {
	r, err := ParseDateRange(dateRange)
	if err != nil {
		return time.Time{}
	}
	return r.Start
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
