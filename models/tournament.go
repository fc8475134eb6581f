package models

import "time"

// TournamentDurationMonths is how long a tournament lasts after its start date.
const TournamentDurationMonths = 3

// Tournament представляет турнир и принадлежащие ему игры.
type Tournament struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	LogoKey   *string   `json:"-" db:"logo_key"`
	Version   int64     `json:"-" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Загружается только по запросу (includeGames).
	Games []Game `json:"games,omitempty" db:"-"`
}

// EndDate is always derived from StartDate and is never stored.
func (t Tournament) EndDate() time.Time {
	return AddMonths(t.StartDate, TournamentDurationMonths)
}

// AddMonths adds n calendar months, clamping the day to the last day of the
// resulting month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	hour, min, sec := t.Clock()
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}
