package services

import "errors"

// Shared errors used across services and the HTTP mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules.
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUsernameRequired     = errors.New("username is required")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidRivalsLevel   = errors.New("rivals level must be between 1 and 500")
	ErrInvalidTeamSize      = errors.New("team size must be 1, 2 or 5")
	ErrInvalidFormat        = errors.New("unknown tournament format")
	ErrRegistrationNotOpen  = errors.New("tournament registration is not open")
	ErrTournamentFull       = errors.New("tournament registration is full")
	ErrInsufficientTeams    = errors.New("not enough teams to start the tournament")
	ErrFormatNotStartable   = errors.New("tournament format has no bracket generator")
	ErrTournamentNotActive  = errors.New("tournament is not active")
	ErrTournamentHasBracket = errors.New("tournament bracket already generated")
	ErrUploadsDisabled      = errors.New("file uploads are not configured")

	// Conflicts.
	ErrPlayerEmailConflict    = errors.New("email address is already in use")
	ErrPlayerUsernameConflict = errors.New("username is already in use")
	ErrAlreadyRegistered      = errors.New("player is already registered for this tournament")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Authentication and authorization.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Entity lookups.
	ErrPlayerNotFound        = errors.New("player not found")
	ErrTeamNotFound          = errors.New("team not found")
	ErrTournamentNotFound    = errors.New("tournament not found")
	ErrMatchNotFound         = errors.New("match not found")
	ErrPendingPlayerNotFound = errors.New("pending player not found")

	// Tournament lifecycle.
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
)
