package repositories

import "errors"

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrGameNotFound        = errors.New("game not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserNameConflict    = errors.New("user name is already taken")
	ErrEmailConflict       = errors.New("email address is already in use")
	ErrTournamentReference = errors.New("game references a tournament that does not exist")

	// ErrRefreshTokenMismatch is returned by RotateRefreshToken when the stored
	// token is no longer the one being exchanged.
	ErrRefreshTokenMismatch = errors.New("refresh token was already rotated")

	// ErrConcurrencyConflict is returned by Complete when a row changed or
	// disappeared between the read and the write.
	ErrConcurrencyConflict = errors.New("the entity was modified or deleted by another writer")
)
