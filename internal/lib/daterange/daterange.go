// Package daterange содержит примитивы для работы с диапазонами календарных дат.
package daterange

import "time"

const day = 24 * time.Hour

// Overlap сообщает, пересекаются ли диапазоны [aStart, aEnd] и [bStart, bEnd].
// Обе границы включительные: диапазоны, делящие один общий день, пересекаются.
// Для перевёрнутых диапазонов возвращает false.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	latestStart := Max(aStart, bStart)
	earliestEnd := Min(aEnd, bEnd)
	return DaysBetween(latestStart, earliestEnd)+1 > 0
}

// DaysBetween количество полных дней от from до to (отрицательное, если to раньше from).
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)) / day)
}

// Day отбрасывает время суток, оставляя календарную дату в UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date короткая запись для календарной даты.
func Date(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// Max более поздняя из двух дат.
func Max(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// Min более ранняя из двух дат.
func Min(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// WeekdayIndex номер дня недели от 0 (понедельник) до 6 (воскресенье).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// StartOfWeek понедельник ISO-недели, содержащей t.
func StartOfWeek(t time.Time) time.Time {
	d := Day(t)
	return d.AddDate(0, 0, -WeekdayIndex(d))
}
