package timesheet

import "github.com/hitoshi/timecard/internal/model"

// WeekGrid は詳細ビュー用の週グリッドを表す。
// Daysは範囲内の営業日を昇順に並べたもの。
// Entriesは正規化済み日付をキーとし、挿入順を保ったエントリ列を持つ。
// Unmatchedはグリッドのどの日にも対応しないエントリで、
// 表示からは外れるが元のエントリ列からは削除されない。
type WeekGrid struct {
	Days      []string                          `json:"days"`
	Entries   map[string][]model.TimesheetEntry `json:"entries"`
	Unmatched []model.TimesheetEntry            `json:"unmatched"`
}

// GroupByDate はエントリを正規化済み日付（YYYY-MM-DD）で分割する。
// 各エントリはちょうど1つのバケットに属し、日内の順序は挿入順を保つ。
// 日付が解析できないエントリはキー "" のバケットに集める。
func GroupByDate(entries []model.TimesheetEntry) map[string][]model.TimesheetEntry {
	grouped := make(map[string][]model.TimesheetEntry)
	for _, e := range entries {
		key, ok := NormalizeDate(e.Date)
		if !ok {
			key = ""
		}
		grouped[key] = append(grouped[key], e)
	}
	return grouped
}

// BuildWeekGrid は日付範囲とエントリ列から週グリッドを構築する。
// 範囲内の営業日ごとにエントリをぶら下げ、どの営業日にも一致しない
// エントリ（範囲外の日付、土日、解析不能な日付）はUnmatchedに回す。
// 不変条件が壊れた入力でもクラッシュせず、その分をUnmatchedで報告する。
func BuildWeekGrid(r DateRange, entries []model.TimesheetEntry) WeekGrid {
	days := r.BusinessDays()
	grouped := GroupByDate(entries)

	grid := WeekGrid{
		Days:      days,
		Entries:   make(map[string][]model.TimesheetEntry, len(days)),
		Unmatched: []model.TimesheetEntry{},
	}

	dayKeys := make(map[string]bool, len(days))
	for _, d := range days {
		dayKeys[d] = true
		if es, ok := grouped[d]; ok {
			grid.Entries[d] = es
		} else {
			grid.Entries[d] = []model.TimesheetEntry{}
		}
	}

	// グリッドに対応する日がないバケットはUnmatchedへ。元の順序を保つ。
	for _, e := range entries {
		key, ok := NormalizeDate(e.Date)
		if !ok || !dayKeys[key] {
			grid.Unmatched = append(grid.Unmatched, e)
		}
	}

	return grid
}
