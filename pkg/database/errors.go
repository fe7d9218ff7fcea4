package database

import "errors"

// ErrNotReady indicates the database connection has not been established
// or no longer answers.
var ErrNotReady = errors.New("database not ready")
