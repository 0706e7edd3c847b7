package arena

import "errors"

// ErrBattleInProgress indica che l'utente ha gia' una battaglia aperta (anche su un'altra istanza).
var ErrBattleInProgress = errors.New("battle already in progress for user")
