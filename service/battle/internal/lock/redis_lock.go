package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrMissingKey indica un rilascio senza chiave o token.
var ErrMissingKey = errors.New("key and token are required")

// ErrLockLost indica che il lock e' scaduto o appartiene a un altro token.
var ErrLockLost = errors.New("lock no longer held")

// Manager gestisce l'acquisizione e il rilascio di lock distribuiti.
type Manager interface {
	Acquire(ctx context.Context, key string) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
	Refresh(ctx context.Context, key, token string) error
}

// BattleKey e' la chiave che impedisce allo stesso utente due battaglie contemporanee,
// anche su istanze diverse del servizio.
func BattleKey(user string) string {
	return "lock:battle:" + user
}

// RedisLock implementa un lock distribuito basato su Redis (SET NX + TTL).
type RedisLock struct {
	client  redis.Cmdable
	ttl     time.Duration
	retries int
	backoff time.Duration
}

// NewRedisLock crea il lock; il TTL evita lock orfani se il processo muore a meta' battaglia.
func NewRedisLock(client redis.Cmdable, ttl time.Duration, retries int, backoff time.Duration) *RedisLock {
	return &RedisLock{
		client:  client,
		ttl:     ttl,
		retries: retries,
		backoff: backoff,
	}
}

// NewRedisClient apre il client e verifica la connessione.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (l *RedisLock) Acquire(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	for attempt := 0; attempt <= l.retries; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return "", false, err
		}
		if ok {
			return token, true, nil
		}
		if attempt < l.retries {
			select {
			case <-ctx.Done():
				return "", false, ctx.Err()
			case <-time.After(l.backoff):
			}
		}
	}
	return "", false, nil
}

// Release cancella la chiave solo se il token e' ancora il nostro.
func (l *RedisLock) Release(ctx context.Context, key, token string) error {
	if key == "" || token == "" {
		return ErrMissingKey
	}
	return releaseLua.Run(ctx, l.client, []string{key}, token).Err()
}

// Refresh rinnova il TTL finche' il token e' ancora il nostro.
func (l *RedisLock) Refresh(ctx context.Context, key, token string) error {
	if key == "" || token == "" {
		return ErrMissingKey
	}
	renewed, err := refreshLua.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if renewed == 0 {
		return ErrLockLost
	}
	return nil
}

// TTL ritorna la durata del lock.
func (l *RedisLock) TTL() time.Duration {
	return l.ttl
}

var refreshLua = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

var releaseLua = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)
