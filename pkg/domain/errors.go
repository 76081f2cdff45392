package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the registry or store.
var ErrSessionNotFound = errors.New("session not found")

// ErrStateNotFound is returned by a repository that has never saved a State.
var ErrStateNotFound = errors.New("state not found")

// ErrEntityNotFound is returned when a decision or query targets an unknown entity.
var ErrEntityNotFound = errors.New("entity not found")

// ErrInvalidCommand is returned when a Command fails structural validation.
var ErrInvalidCommand = errors.New("invalid command")

// ErrEntityExists is returned when spawning an entity whose id is already taken.
var ErrEntityExists = errors.New("entity already exists")

// ErrTileNotFound is returned when a decision references a tile missing from the board.
var ErrTileNotFound = errors.New("tile not found")
