package repository

import "errors"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidCapacity is returned when an admin tries to set a region's
// maximum below its current confirmed count.
var ErrInvalidCapacity = errors.New("max capacity below current confirmed count")
