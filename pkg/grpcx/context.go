package grpcx

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// Chiavi condivise per passare l'identita' del giocatore tra servizi gRPC.
type contextKey string

// ContextUserKey definisce la chiave per il context locale (non gRPC); il valore e' il nome utente.
const ContextUserKey contextKey = "user"

// AuthorizationMetadataKey e' la chiave metadata che porta "Bearer <token>".
const AuthorizationMetadataKey = "authorization"

const bearerPrefix = "Bearer "

// BearerToken estrae il token dalle metadata gRPC in ingresso.
func BearerToken(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	for _, value := range md.Get(AuthorizationMetadataKey) {
		value = strings.TrimSpace(value)
		if len(value) > len(bearerPrefix) && strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(value[len(bearerPrefix):]), true
		}
	}
	return "", false
}

// WithBearerToken aggiunge il token alle metadata in uscita (lato client).
func WithBearerToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, AuthorizationMetadataKey, bearerPrefix+token)
}
