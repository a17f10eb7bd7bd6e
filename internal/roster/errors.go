package roster

import "errors"

// ErrPlayerNotFound - player not found in DB
var ErrPlayerNotFound = errors.New("player not found")

// ErrSyncRoster is returned when the roster sync fails partway.
var ErrSyncRoster = errors.New("failed to sync roster")

// ErrListPlayers is returned when listing players fails.
var ErrListPlayers = errors.New("failed to list players")

// ErrUpdateJersey is returned when a jersey-number update fails.
var ErrUpdateJersey = errors.New("failed to update jersey number")
