package models

import "time"

// Game принадлежит ровно одному турниру.
type Game struct {
	ID           int       `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Time         time.Time `json:"time" db:"game_time"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Version      int64     `json:"-" db:"version"`
}
