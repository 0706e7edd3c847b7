package lobby

import "errors"

// ErrAlreadyQueued indica che un giocatore con lo stesso nome e' gia' in attesa.
var ErrAlreadyQueued = errors.New("participant already queued")

// ErrMalformedEntry indica una voce vuota in coda o un partecipante senza nome.
var ErrMalformedEntry = errors.New("malformed lobby entry")

// ErrSettleFailed indica che la battaglia e' avvenuta ma il suo esito non e' stato salvato.
var ErrSettleFailed = errors.New("battle result not settled")
