package timesheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/timecard/internal/model"
)

// dateLayout はエントリ日付および日付範囲の両端の形式。
const dateLayout = "2006-01-02"

// rangeSeparator は日付範囲の区切り文字列（スペース・ハイフン・スペース）。
const rangeSeparator = " - "

// DateRange は解析済みの日付範囲を表す。
// 表示文字列は境界で1回だけ解析し、以降は構造化されたペアを引き回す。
// StartとEndはタイムゾーンを持たないカレンダー日付として扱う
// （時刻成分は常に00:00:00 UTCに固定し、日付のずれを起こさない）。
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange は "YYYY-MM-DD - YYYY-MM-DD" 形式の文字列を解析する。
// 区切りが見つからない、どちらかの端が日付として解析できない、
// または開始が終了より後の場合はINVALID_DATE_RANGEエラーを返す。
// ロケール依存の自由形式（"1 - 5 January, 2024" 等）は受け付けない。
func ParseDateRange(s string) (DateRange, error) {
	parts := strings.SplitN(s, rangeSeparator, 2)
	if len(parts) != 2 {
		return DateRange{}, model.NewInvalidDateRangeError(fmt.Sprintf("expected %q separator in %q", rangeSeparator, s))
	}

	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(parts[0]), time.UTC)
	if err != nil {
		return DateRange{}, model.NewInvalidDateRangeError(fmt.Sprintf("start date %q is not a valid YYYY-MM-DD date", parts[0]))
	}

	end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(parts[1]), time.UTC)
	if err != nil {
		return DateRange{}, model.NewInvalidDateRangeError(fmt.Sprintf("end date %q is not a valid YYYY-MM-DD date", parts[1]))
	}

	if start.After(end) {
		return DateRange{}, model.NewInvalidDateRangeError(fmt.Sprintf("start date %s is after end date %s", parts[0], parts[1]))
	}

	return DateRange{Start: start, End: end}, nil
}

// String は "YYYY-MM-DD - YYYY-MM-DD" 形式の表示文字列を返す。
func (r DateRange) String() string {
	return r.Start.Format(dateLayout) + rangeSeparator + r.End.Format(dateLayout)
}

// BusinessDays は範囲内の営業日（ISO曜日1〜5、月〜金）を
// 開始から終了まで両端含みで走査し、YYYY-MM-DD形式で昇順に返す。
// 土日のみの範囲では空スライスを返す。
func (r DateRange) BusinessDays() []string {
	days := []string{}
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd >= time.Monday && wd <= time.Friday {
			days = append(days, d.Format(dateLayout))
		}
	}
	return days
}

// NormalizeDate はエントリの日付文字列をYYYY-MM-DD形式に正規化する。
// 時刻・タイムゾーン付きの文字列（RFC 3339）はその日付自身のカレンダー成分で
// 切り詰める。UTCへ変換してから文字列化すると深夜帯で日付が前後に
// ずれるため、解析された値のロケーションのままFormatする。
// 解析できない文字列は空文字列とfalseを返す。
func NormalizeDate(s string) (string, bool) {
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t.Format(dateLayout), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(dateLayout), true
	}
	return "", false
}
