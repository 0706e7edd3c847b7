package store

import "errors"

// Errori di dominio usati dal repository e mappati nel layer gRPC.
var ErrUserNotFound = errors.New("user not found")

// ErrScoreNotFound indica un utente senza riga nella tabella scores.
var ErrScoreNotFound = errors.New("score not found")
