package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-api/events"
	"github.com/Dosada05/tournament-api/models"
	"github.com/Dosada05/tournament-api/patch"
	"github.com/Dosada05/tournament-api/repositories"
	"github.com/Dosada05/tournament-api/storage"
	"github.com/google/uuid"
)

type TournamentService interface {
	GetAll(ctx context.Context, q QueryParameters) (*PagedResult[TournamentDTO], error)
	GetByID(ctx context.Context, id int, includeGames bool) (*TournamentDTO, error)
	Create(ctx context.Context, input TournamentCreateDTO) (*TournamentDTO, error)
	Update(ctx context.Context, id int, input TournamentEditDTO) error
	Patch(ctx context.Context, id int, doc patch.Document) (*TournamentDTO, error)
	Delete(ctx context.Context, id int) error
	UpdateLogo(ctx context.Context, id int, file io.Reader, contentType string) (*TournamentDTO, error)
}

type tournamentService struct {
	store     repositories.UnitOfWorkFactory
	uploader  storage.FileUploader
	publisher EventPublisher
	logger    *slog.Logger
}

// NewTournamentService accepts a nil uploader (logos disabled) and a nil
// publisher (no change feed).
func NewTournamentService(
	store repositories.UnitOfWorkFactory,
	uploader storage.FileUploader,
	publisher EventPublisher,
	logger *slog.Logger,
) TournamentService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{store: store, uploader: uploader, publisher: publisher, logger: logger}
}

func tournamentNotFound(id int) *Error {
	return notFoundError(fmt.Sprintf("Tournament with id '%d' was not found", id), repositories.ErrTournamentNotFound)
}

func (s *tournamentService) GetAll(ctx context.Context, q QueryParameters) (*PagedResult[TournamentDTO], error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	uow := s.store.New()
	filter := repositories.TournamentFilter{SearchTerm: q.SearchTerm, OrderBy: q.OrderBy, IncludeGames: q.IncludeGames}
	tournaments, total, err := uow.Tournaments().GetPaged(ctx, filter, q.PageNumber, q.PageSize)
	if err != nil {
		return nil, internalError(err)
	}
	if total == 0 {
		return nil, notFoundError("No tournaments found", repositories.ErrTournamentNotFound)
	}

	items := make([]TournamentDTO, len(tournaments))
	for i := range tournaments {
		items[i] = toTournamentDTO(&tournaments[i], s.uploader)
	}
	return &PagedResult[TournamentDTO]{Items: items, Metadata: newPaginationMetadata(total, q)}, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int, includeGames bool) (*TournamentDTO, error) {
	t, err := s.store.New().Tournaments().FindByID(ctx, id, includeGames, false)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, tournamentNotFound(id)
		}
		return nil, internalError(err)
	}
	dto := toTournamentDTO(t, s.uploader)
	return &dto, nil
}

func (s *tournamentService) Create(ctx context.Context, input TournamentCreateDTO) (*TournamentDTO, error) {
	if msgs := validateStruct(input); len(msgs) > 0 {
		return nil, validationError("Validation failed", msgs...)
	}

	t := &models.Tournament{Title: input.Title, StartDate: input.StartDate.UTC()}
	for _, g := range input.Games {
		t.Games = append(t.Games, models.Game{Title: g.Title, Time: g.Time.UTC()})
	}

	uow := s.store.New()
	uow.Tournaments().Add(t)
	if _, err := uow.Complete(ctx); err != nil {
		return nil, internalError(fmt.Errorf("failed to create tournament: %w", err))
	}

	dto := toTournamentDTO(t, s.uploader)
	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", t.ID), slog.Int("games", len(t.Games)))
	s.publisher.Publish(events.TournamentRoom(t.ID), events.TournamentCreated, dto)
	return &dto, nil
}

func (s *tournamentService) Update(ctx context.Context, id int, input TournamentEditDTO) error {
	if id != input.ID {
		return validationError("Tournament ID mismatch.")
	}
	if msgs := validateStruct(input); len(msgs) > 0 {
		return validationError("Validation failed", msgs...)
	}

	uow := s.store.New()
	t, err := uow.Tournaments().FindByID(ctx, id, false, true)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return tournamentNotFound(id)
		}
		return internalError(err)
	}

	t.Title = input.Title
	t.StartDate = input.StartDate.UTC()
	if err := s.commit(ctx, uow, id); err != nil {
		return err
	}
	s.publisher.Publish(events.TournamentRoom(id), events.TournamentUpdated, toTournamentDTO(t, s.uploader))
	return nil
}

func (s *tournamentService) Patch(ctx context.Context, id int, doc patch.Document) (*TournamentDTO, error) {
	if doc == nil {
		return nil, validationError("Patch document cannot be null")
	}

	uow := s.store.New()
	t, err := uow.Tournaments().FindByID(ctx, id, false, true)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, tournamentNotFound(id)
		}
		return nil, internalError(err)
	}

	edit := TournamentEditDTO{ID: t.ID, Title: t.Title, StartDate: t.StartDate}
	if errs := patch.Apply(doc, &edit); len(errs) > 0 {
		return nil, validationError("Failed to apply patch to tournament", patchMessages(errs)...)
	}
	if msgs := validateStruct(edit); len(msgs) > 0 {
		return nil, unprocessableError("Validation failed", msgs...)
	}

	t.Title = edit.Title
	t.StartDate = edit.StartDate.UTC()
	if err := s.commit(ctx, uow, id); err != nil {
		return nil, err
	}

	dto := toTournamentDTO(t, s.uploader)
	s.publisher.Publish(events.TournamentRoom(id), events.TournamentUpdated, dto)
	return &dto, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	uow := s.store.New()
	t, err := uow.Tournaments().FindByID(ctx, id, false, true)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return tournamentNotFound(id)
		}
		return internalError(err)
	}

	uow.Tournaments().Remove(t)
	if err := s.commit(ctx, uow, id); err != nil {
		return err
	}

	if t.LogoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *t.LogoKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete tournament logo", slog.Int("tournament_id", id), slog.Any("error", err))
		}
	}
	s.logger.InfoContext(ctx, "tournament deleted", slog.Int("tournament_id", id))
	s.publisher.Publish(events.TournamentRoom(id), events.TournamentDeleted, map[string]int{"id": id})
	return nil
}

// commit skips no-op writes and turns a lost optimistic race into NotFound
// or Conflict depending on whether the row still exists.
func (s *tournamentService) commit(ctx context.Context, uow repositories.UnitOfWork, id int) error {
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

	exists, anyErr := s.store.New().Tournaments().Any(ctx, id)
	if anyErr != nil {
		return internalError(anyErr)
	}
	if !exists {
		return tournamentNotFound(id)
	}
	s.logger.WarnContext(ctx, "concurrent tournament write rejected", slog.Int("tournament_id", id))
	return conflictError("Concurrency conflict occurred while updating the tournament", err)
}

const MaxLogoSize = 5 << 20

var logoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/webp": ".webp",
}

// UpdateLogo uploads a new logo, stores its key and removes the previous
// object. The old object is deleted only after the new key is committed.
func (s *tournamentService) UpdateLogo(ctx context.Context, id int, file io.Reader, contentType string) (*TournamentDTO, error) {
	if s.uploader == nil {
		return nil, &Error{Kind: KindUnavailable, Message: "Logo uploads are not available", Err: ErrStorageDisabled}
	}
	ext, ok := logoExtensions[contentType]
	if !ok {
		return nil, validationError("Unsupported logo format", fmt.Sprintf("content type %q is not allowed", contentType))
	}

	uow := s.store.New()
	t, err := uow.Tournaments().FindByID(ctx, id, false, true)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, tournamentNotFound(id)
		}
		return nil, internalError(err)
	}

	key := fmt.Sprintf("tournaments/%d/logo-%s%s", id, uuid.NewString(), ext)
	uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.uploader.Upload(uploadCtx, key, contentType, file); err != nil {
		return nil, internalError(fmt.Errorf("failed to upload logo: %w", err))
	}

	oldKey := t.LogoKey
	t.LogoKey = &key
	if err := s.commit(ctx, uow, id); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned logo", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, err
	}

	if oldKey != nil && *oldKey != "" {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous logo", slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	dto := toTournamentDTO(t, s.uploader)
	s.publisher.Publish(events.TournamentRoom(id), events.TournamentUpdated, dto)
	return &dto, nil
}

func patchMessages(errs []error) []string {
	msgs := patch.Messages(errs)
	for i, m := range msgs {
		msgs[i] = "Error applying patch: " + m
	}
	return msgs
}
