package joker

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/csa-backend/internal/lib/daterange"
)

// ErrInvalidRestriction строка ограничений джокеров не соответствует формату DD.MM.-DD.MM.[N].
var ErrInvalidRestriction = errors.New("invalid joker restriction")

var restrictionPattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.-(\d{2})\.(\d{2})\.\[(\d+)\]$`)

// Restriction ограничивает количество джокеров между двумя днями года.
type Restriction struct {
	StartDay   int
	StartMonth time.Month
	EndDay     int
	EndMonth   time.Month
	MaxJokers  int
}

// Window возвращает окно ограничения в году даты reference.
// 29.02. в невисокосном году сдвигается на 28.02.
func (r Restriction) Window(reference time.Time) (time.Time, time.Time) {
	year := reference.Year()
	return dayInYear(year, r.StartMonth, r.StartDay), dayInYear(year, r.EndMonth, r.EndDay)
}

func dayInYear(year int, month time.Month, day int) time.Time {
	last := daterange.Date(year, month+1, 0).Day()
	return daterange.Date(year, month, min(day, last))
}

// Applies сообщает, попадает ли reference в окно ограничения.
func (r Restriction) Applies(reference time.Time) bool {
	start, end := r.Window(reference)
	day := daterange.Day(reference)
	return !start.After(day) && !end.Before(day)
}

func (r Restriction) String() string {
	return fmt.Sprintf("%02d.%02d.-%02d.%02d.[%d]", r.StartDay, r.StartMonth, r.EndDay, r.EndMonth, r.MaxJokers)
}

// ParseRestrictions разбирает строку ограничений, записи разделены «;».
// Пустая строка означает отсутствие ограничений. Любая некорректная запись
// делает недействительной всю строку.
func ParseRestrictions(s string) ([]Restriction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var result []Restriction
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		match := restrictionPattern.FindStringSubmatch(entry)
		if match == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRestriction, entry)
		}

		nums := make([]int, 0, 5)
		for _, part := range match[1:] {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRestriction, entry, err)
			}
			nums = append(nums, n)
		}

		r := Restriction{
			StartDay:   nums[0],
			StartMonth: time.Month(nums[1]),
			EndDay:     nums[2],
			EndMonth:   time.Month(nums[3]),
			MaxJokers:  nums[4],
		}
		if !validDayOfMonth(r.StartDay, r.StartMonth) || !validDayOfMonth(r.EndDay, r.EndMonth) {
			return nil, fmt.Errorf("%w: %q: no such day", ErrInvalidRestriction, entry)
		}
		result = append(result, r)
	}
	return result, nil
}

// validDayOfMonth проверяет день по високосному году, чтобы 29.02. считался допустимым.
func validDayOfMonth(day int, month time.Month) bool {
	if month < time.January || month > time.December || day < 1 {
		return false
	}
	return day <= daterange.Date(2024, month+1, 0).Day()
}
