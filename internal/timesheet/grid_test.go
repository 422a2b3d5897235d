package timesheet

import (
	"reflect"
	"testing"

	"github.com/hitoshi/timecard/internal/model"
)

// TestGroupByDate は日付ごとのエントリ分割を検証する。
func TestGroupByDate(t *testing.T) {
	entries := []model.TimesheetEntry{
		{ID: "e1", Date: "2025-01-06", Hours: 4},
		{ID: "e2", Date: "2025-01-07", Hours: 8},
		{ID: "e3", Date: "2025-01-06", Hours: 4},
		{ID: "e4", Date: "2025-01-06T10:00:00Z", Hours: 2},
		{ID: "e5", Date: "not-a-date", Hours: 1},
	}

	grouped := GroupByDate(entries)

	if len(grouped["2025-01-06"]) != 3 {
		t.Errorf("2025-01-06 has %d entries, want 3", len(grouped["2025-01-06"]))
	}
	// 同一日内の順序は挿入順を保つ
	ids := []string{}
	for _, e := range grouped["2025-01-06"] {
		ids = append(ids, e.ID)
	}
	if !reflect.DeepEqual(ids, []string{"e1", "e3", "e4"}) {
		t.Errorf("2025-01-06 order = %v, want [e1 e3 e4]", ids)
	}

	if len(grouped["2025-01-07"]) != 1 {
		t.Errorf("2025-01-07 has %d entries, want 1", len(grouped["2025-01-07"]))
	}

	// 解析不能な日付は空キーのバケットへ
	if len(grouped[""]) != 1 || grouped[""][0].ID != "e5" {
		t.Errorf("unparseable bucket = %v, want [e5]", grouped[""])
	}
}

// TestBuildWeekGrid は週グリッドの構築を検証する。
func TestBuildWeekGrid(t *testing.T) {
	r, err := ParseDateRange("2025-01-06 - 2025-01-10")
	if err != nil {
		t.Fatalf("ParseDateRange returned error: %v", err)
	}

	entries := []model.TimesheetEntry{
		{ID: "e1", Date: "2025-01-06", Hours: 8},
		{ID: "e2", Date: "2025-01-08", Hours: 8},
		{ID: "e3", Date: "2025-01-20", Hours: 8},  // 範囲外
		{ID: "e4", Date: "2025-01-11", Hours: 8},  // 範囲内だが土曜
		{ID: "e5", Date: "not-a-date", Hours: 0},  // 解析不能
	}

	grid := BuildWeekGrid(r, entries)

	if len(grid.Days) != 5 {
		t.Fatalf("grid has %d days, want 5", len(grid.Days))
	}

	// すべての営業日にキーがあり、エントリのない日は空スライス
	for _, day := range grid.Days {
		es, ok := grid.Entries[day]
		if !ok {
			t.Errorf("day %q missing from Entries map", day)
			continue
		}
		if es == nil {
			t.Errorf("day %q has nil entry slice, want empty slice", day)
		}
	}

	if len(grid.Entries["2025-01-06"]) != 1 || grid.Entries["2025-01-06"][0].ID != "e1" {
		t.Errorf("2025-01-06 entries = %v, want [e1]", grid.Entries["2025-01-06"])
	}
	if len(grid.Entries["2025-01-07"]) != 0 {
		t.Errorf("2025-01-07 entries = %v, want empty", grid.Entries["2025-01-07"])
	}

	// 範囲外・土日・解析不能はUnmatchedへ、元の順序で
	unmatchedIDs := []string{}
	for _, e := range grid.Unmatched {
		unmatchedIDs = append(unmatchedIDs, e.ID)
	}
	if !reflect.DeepEqual(unmatchedIDs, []string{"e3", "e4", "e5"}) {
		t.Errorf("Unmatched = %v, want [e3 e4 e5]", unmatchedIDs)
	}
}

// TestBuildWeekGrid_Partition は各エントリがちょうど1箇所に
// 現れること（グリッドかUnmatchedのどちらか）を検証する。
func TestBuildWeekGrid_Partition(t *testing.T) {
	r, err := ParseDateRange("2025-01-06 - 2025-01-10")
	if err != nil {
		t.Fatalf("ParseDateRange returned error: %v", err)
	}

	entries := []model.TimesheetEntry{
		{ID: "e1", Date: "2025-01-06"},
		{ID: "e2", Date: "2025-01-07"},
		{ID: "e3", Date: "2025-02-01"},
		{ID: "e4", Date: "garbage"},
		{ID: "e5", Date: "2025-01-10"},
	}

	grid := BuildWeekGrid(r, entries)

	seen := map[string]int{}
	for _, day := range grid.Days {
		for _, e := range grid.Entries[day] {
			seen[e.ID]++
		}
	}
	for _, e := range grid.Unmatched {
		seen[e.ID]++
	}

	if len(seen) != len(entries) {
		t.Errorf("grid covers %d entries, want %d", len(seen), len(entries))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("entry %q appears %d times, want exactly 1", id, count)
		}
	}
}

// TestBuildWeekGrid_EmptyEntries はエントリなしのタイムシートでも
// 営業日ごとの空スライスを持つグリッドが返ることを検証する。
func TestBuildWeekGrid_EmptyEntries(t *testing.T) {
	r, err := ParseDateRange("2025-01-06 - 2025-01-10")
	if err != nil {
		t.Fatalf("ParseDateRange returned error: %v", err)
	}

	grid := BuildWeekGrid(r, nil)

	if len(grid.Days) != 5 {
		t.Fatalf("grid has %d days, want 5", len(grid.Days))
	}
	for _, day := range grid.Days {
		if len(grid.Entries[day]) != 0 {
			t.Errorf("day %q has %d entries, want 0", day, len(grid.Entries[day]))
		}
	}
	if len(grid.Unmatched) != 0 {
		t.Errorf("Unmatched = %v, want empty", grid.Unmatched)
	}
}
