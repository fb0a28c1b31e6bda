// Package month содержит вспомогательные функции для календарных месяцев.
package month

import (
	"time"
)

// FirstDay первый день месяца, содержащего t.
func FirstDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// LastDay последний день месяца, содержащего t.
func LastDay(t time.Time) time.Time {
	return FirstDay(t).AddDate(0, 1, -1)
}

// Next первый день следующего месяца.
func Next(t time.Time) time.Time {
	return FirstDay(t).AddDate(0, 1, 0)
}

// Previous первый день предыдущего месяца.
func Previous(t time.Time) time.Time {
	return FirstDay(t).AddDate(0, -1, 0)
}

// IsFullyCovered сообщает, покрывает ли диапазон [start, end] весь месяц monthStart.
// Месяц не покрыт, только если диапазон начинается или заканчивается внутри него;
// начало первого числа и окончание последним днём месяц не разрывают.
func IsFullyCovered(start, end, monthStart time.Time) bool {
	first := FirstDay(monthStart)
	return !start.After(first) && !end.Before(LastDay(first))
}
