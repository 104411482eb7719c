package service

import (
	"errors"
	"time"

	"github.com/Coding-Krakken/ReplitMaint-sub003/internal/model"
)

// ── PM 周期计算 ──

// ErrInvalidFrequency 无效的维护周期
var ErrInvalidFrequency = errors.New("无效的维护周期")

// NextDueDate 根据上次完成日期与维护周期计算下次到期日。
// 输入输出均为日历日（UTC 零点），时区换算属于展示层职责。
// 月度/季度/年度按锚定日推进：保留原日号，目标月不存在该日时收敛到当月最后一天
// （1月31日 + monthly → 2月28/29日），绝不溢出到再下一个月。
func NextDueDate(last time.Time, freq model.Frequency) (time.Time, error) {
	last = truncateToDate(last)
	switch freq {
	case model.FrequencyDaily:
		return last.AddDate(0, 0, 1), nil
	case model.FrequencyWeekly:
		return last.AddDate(0, 0, 7), nil
	case model.FrequencyMonthly:
		return addMonthsClamped(last, 1), nil
	case model.FrequencyQuarterly:
		return addMonthsClamped(last, 3), nil
	case model.FrequencyAnnually:
		return addMonthsClamped(last, 12), nil
	default:
		return time.Time{}, ErrInvalidFrequency
	}
}

// addMonthsClamped 月份推进并做月末收敛
func addMonthsClamped(t time.Time, months int) time.Time {
	day := t.Day()
	// 以目标月1日为基准推进，绕开 AddDate 对不存在日期的归一化（如 1月31日+1月=3月2/3日）
	firstOfTarget := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	if last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}

// daysInMonth 返回指定年月的天数
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

// truncateToDate 抹除时分秒，统一为 UTC 日历日
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
