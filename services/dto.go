package services

import (
	"encoding/json"
	"time"

	"github.com/Dosada05/tournament-api/models"
	"github.com/Dosada05/tournament-api/storage"
)

type TournamentDTO struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	LogoURL   *string   `json:"logoUrl,omitempty"`
	Games     []GameDTO `json:"games,omitempty"`
}

// MarshalJSON writes "games": [] when games were loaded and there are none;
// the key is left out only when games were not requested.
func (d TournamentDTO) MarshalJSON() ([]byte, error) {
	type plain TournamentDTO
	out := struct {
		plain
		Games *[]GameDTO `json:"games,omitempty"`
	}{plain: plain(d)}
	if d.Games != nil {
		out.Games = &d.Games
	}
	return json.Marshal(out)
}

type TournamentCreateDTO struct {
	Title     string          `json:"title" validate:"required,max=100"`
	StartDate time.Time       `json:"startDate" validate:"required"`
	Games     []GameCreateDTO `json:"games,omitempty" validate:"omitempty,dive"`
}

// TournamentEditDTO is both the PUT body and the document PATCH operates on.
// End date is derived and therefore absent.
type TournamentEditDTO struct {
	ID        int       `json:"id"`
	Title     string    `json:"title" validate:"required,max=100"`
	StartDate time.Time `json:"startDate" validate:"required"`
}

type GameDTO struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Time         time.Time `json:"time"`
	TournamentID int       `json:"tournamentId"`
}

type GameCreateDTO struct {
	Title string    `json:"title" validate:"required,max=100"`
	Time  time.Time `json:"time" validate:"required"`
}

type GameEditDTO struct {
	ID    int       `json:"id"`
	Title string    `json:"title" validate:"required,max=100"`
	Time  time.Time `json:"time" validate:"required"`
}

func toTournamentDTO(t *models.Tournament, uploader storage.FileUploader) TournamentDTO {
	dto := TournamentDTO{
		ID:        t.ID,
		Title:     t.Title,
		StartDate: t.StartDate,
		EndDate:   t.EndDate(),
	}
	if t.LogoKey != nil && *t.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*t.LogoKey); url != "" {
			dto.LogoURL = &url
		}
	}
	if t.Games != nil {
		dto.Games = make([]GameDTO, len(t.Games))
		for i := range t.Games {
			dto.Games[i] = toGameDTO(&t.Games[i])
		}
	}
	return dto
}

func toGameDTO(g *models.Game) GameDTO {
	return GameDTO{ID: g.ID, Title: g.Title, Time: g.Time, TournamentID: g.TournamentID}
}
