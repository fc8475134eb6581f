package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-api/events"
	"github.com/Dosada05/tournament-api/models"
	"github.com/Dosada05/tournament-api/patch"
	"github.com/Dosada05/tournament-api/repositories"
)

type GameService interface {
	GetAll(ctx context.Context, tournamentID int, q QueryParameters) (*PagedResult[GameDTO], error)
	GetByID(ctx context.Context, tournamentID, id int) (*GameDTO, error)
	GetByTitle(ctx context.Context, tournamentID int, title string) (*GameDTO, error)
	Create(ctx context.Context, tournamentID int, input GameCreateDTO) (*GameDTO, error)
	Update(ctx context.Context, tournamentID, id int, input GameEditDTO) error
	Patch(ctx context.Context, tournamentID, id int, doc patch.Document) (*GameDTO, error)
	Delete(ctx context.Context, tournamentID, id int) error
}

type gameService struct {
	store     repositories.UnitOfWorkFactory
	publisher EventPublisher
	logger    *slog.Logger
}

func NewGameService(store repositories.UnitOfWorkFactory, publisher EventPublisher, logger *slog.Logger) GameService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &gameService{store: store, publisher: publisher, logger: logger}
}

func gameNotFound(id int) *Error {
	return notFoundError(fmt.Sprintf("Game with id '%d' does not exist.", id), repositories.ErrGameNotFound)
}

func gameMismatch(tournamentID, id int) *Error {
	return validationError(fmt.Sprintf("Game with id '%d' does not belong to tournament with Id '%d'.", id, tournamentID))
}

func (s *gameService) ensureTournament(ctx context.Context, uow repositories.UnitOfWork, tournamentID int) error {
	exists, err := uow.Tournaments().Any(ctx, tournamentID)
	if err != nil {
		return internalError(err)
	}
	if !exists {
		return notFoundError(fmt.Sprintf("Tournament with Id '%d' was not found.", tournamentID), repositories.ErrTournamentNotFound)
	}
	return nil
}

// loadForWrite returns a tracked game that belongs to tournamentID.
func (s *gameService) loadForWrite(ctx context.Context, uow repositories.UnitOfWork, tournamentID, id int) (*models.Game, error) {
	if err := s.ensureTournament(ctx, uow, tournamentID); err != nil {
		return nil, err
	}
	g, err := uow.Games().FindByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, gameNotFound(id)
		}
		return nil, internalError(err)
	}
	if g.TournamentID != tournamentID {
		return nil, gameMismatch(tournamentID, id)
	}
	return g, nil
}

func (s *gameService) GetAll(ctx context.Context, tournamentID int, q QueryParameters) (*PagedResult[GameDTO], error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	uow := s.store.New()
	if err := s.ensureTournament(ctx, uow, tournamentID); err != nil {
		return nil, err
	}

	filter := repositories.GameFilter{TournamentID: tournamentID, SearchTerm: q.SearchTerm, OrderBy: q.OrderBy}
	games, total, err := uow.Games().GetPaged(ctx, filter, q.PageNumber, q.PageSize)
	if err != nil {
		return nil, internalError(err)
	}
	if total == 0 {
		return nil, notFoundError(fmt.Sprintf("No games found for tournament with Id '%d'.", tournamentID), repositories.ErrGameNotFound)
	}

	items := make([]GameDTO, len(games))
	for i := range games {
		items[i] = toGameDTO(&games[i])
	}
	return &PagedResult[GameDTO]{Items: items, Metadata: newPaginationMetadata(total, q)}, nil
}

func (s *gameService) GetByID(ctx context.Context, tournamentID, id int) (*GameDTO, error) {
	uow := s.store.New()
	if err := s.ensureTournament(ctx, uow, tournamentID); err != nil {
		return nil, err
	}
	g, err := uow.Games().FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, gameNotFound(id)
		}
		return nil, internalError(err)
	}
	// Under another tournament the game simply does not exist.
	if g.TournamentID != tournamentID {
		return nil, gameNotFound(id)
	}
	dto := toGameDTO(g)
	return &dto, nil
}

func (s *gameService) GetByTitle(ctx context.Context, tournamentID int, title string) (*GameDTO, error) {
	uow := s.store.New()
	if err := s.ensureTournament(ctx, uow, tournamentID); err != nil {
		return nil, err
	}
	g, err := uow.Games().FindByTitle(ctx, tournamentID, title)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, notFoundError(fmt.Sprintf("Game with Title '%s' was not found.", title), err)
		}
		return nil, internalError(err)
	}
	dto := toGameDTO(g)
	return &dto, nil
}

func (s *gameService) Create(ctx context.Context, tournamentID int, input GameCreateDTO) (*GameDTO, error) {
	if msgs := validateStruct(input); len(msgs) > 0 {
		return nil, validationError("Invalid game data", msgs...)
	}

	uow := s.store.New()
	if err := s.ensureTournament(ctx, uow, tournamentID); err != nil {
		return nil, err
	}

	g := &models.Game{Title: input.Title, Time: input.Time.UTC(), TournamentID: tournamentID}
	uow.Games().Add(g)
	if _, err := uow.Complete(ctx); err != nil {
		if errors.Is(err, repositories.ErrTournamentReference) {
			return nil, notFoundError(fmt.Sprintf("Tournament with Id '%d' was not found.", tournamentID), err)
		}
		return nil, internalError(err)
	}

	dto := toGameDTO(g)
	s.logger.InfoContext(ctx, "game created", slog.Int("tournament_id", tournamentID), slog.Int("game_id", g.ID))
	s.publisher.Publish(events.TournamentRoom(tournamentID), events.GameCreated, dto)
	return &dto, nil
}

func (s *gameService) Update(ctx context.Context, tournamentID, id int, input GameEditDTO) error {
	if msgs := validateStruct(input); len(msgs) > 0 {
		return validationError("Invalid game data", msgs...)
	}
	if id != input.ID {
		return validationError("Game ID mismatch.")
	}

	uow := s.store.New()
	g, err := s.loadForWrite(ctx, uow, tournamentID, id)
	if err != nil {
		return err
	}

	g.Title = input.Title
	g.Time = input.Time.UTC()
	if err := s.commit(ctx, uow, id); err != nil {
		return err
	}
	s.publisher.Publish(events.TournamentRoom(tournamentID), events.GameUpdated, toGameDTO(g))
	return nil
}

func (s *gameService) Patch(ctx context.Context, tournamentID, id int, doc patch.Document) (*GameDTO, error) {
	if doc == nil {
		return nil, validationError("Patch document cannot be null.")
	}

	uow := s.store.New()
	g, err := s.loadForWrite(ctx, uow, tournamentID, id)
	if err != nil {
		return nil, err
	}

	edit := GameEditDTO{ID: g.ID, Title: g.Title, Time: g.Time}
	if errs := patch.Apply(doc, &edit); len(errs) > 0 {
		return nil, validationError("Errors occurred while applying the patch.", patchMessages(errs)...)
	}
	if msgs := validateStruct(edit); len(msgs) > 0 {
		return nil, unprocessableError("Invalid game data", msgs...)
	}

	g.Title = edit.Title
	g.Time = edit.Time.UTC()
	if err := s.commit(ctx, uow, id); err != nil {
		return nil, err
	}

	dto := toGameDTO(g)
	s.publisher.Publish(events.TournamentRoom(tournamentID), events.GameUpdated, dto)
	return &dto, nil
}

func (s *gameService) Delete(ctx context.Context, tournamentID, id int) error {
	uow := s.store.New()
	g, err := s.loadForWrite(ctx, uow, tournamentID, id)
	if err != nil {
		return err
	}

	uow.Games().Remove(g)
	if err := s.commit(ctx, uow, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "game deleted", slog.Int("tournament_id", tournamentID), slog.Int("game_id", id))
	s.publisher.Publish(events.TournamentRoom(tournamentID), events.GameDeleted, map[string]int{"id": id})
	return nil
}

func (s *gameService) commit(ctx context.Context, uow repositories.UnitOfWork, id int) error {
	if !uow.HasChanges() {
		return nil
	}
	_, err := uow.Complete(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrConcurrencyConflict) {
		return internalError(err)
	}

	exists, anyErr := s.store.New().Games().Any(ctx, id)
	if anyErr != nil {
		return internalError(anyErr)
	}
	if !exists {
		return gameNotFound(id)
	}
	s.logger.WarnContext(ctx, "concurrent game write rejected", slog.Int("game_id", id))
	return conflictError("Concurrency error occurred while updating the game.", err)
}
