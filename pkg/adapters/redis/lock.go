package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/exprmig/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the run guard of a collection cannot be taken.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// releaseScript deletes the guard only if this run still owns it. A guard that expired
// and was taken by another run is left alone.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Locker is the run guard of committing migrations and restores. One key per target
// collection ("<database>.<collection>") holds an owner token "<host>:<pid>:<nanos>",
// so an operator can tell which run holds a collection.
type Locker struct {
	client *backend.Client
	prefix string
	poll   time.Duration
	owner  string
}

// NewLocker creates a run guard whose keys live under prefix + "lock:".
func NewLocker(client *backend.Client, prefix string) *Locker {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return &Locker{
		client: client,
		prefix: prefix,
		poll:   100 * time.Millisecond,
		owner:  fmt.Sprintf("%s:%d", host, os.Getpid()),
	}
}

func (l *Locker) key(target string) string {
	return l.prefix + "lock:" + target
}

// Lock takes the guard of target with SET NX PX. The ttl bounds how long a crashed run
// keeps the collection closed. It waits for the current holder until ctx is done.
func (l *Locker) Lock(ctx context.Context, target string, ttl time.Duration) (ports.UnlockFunc, error) {
	guardKey := l.key(target)
	token := fmt.Sprintf("%s:%d", l.owner, time.Now().UnixNano())

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, guardKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLockAcquire, err)
		}
		if ok {
			return func(ctx context.Context) error {
				return l.client.Eval(ctx, releaseScript, []string{guardKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			holder, _ := l.Holder(context.WithoutCancel(ctx), target)
			return nil, fmt.Errorf("%w: %s is being migrated by %s: %v", ErrLockAcquire, target, holder, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Holder returns the owner token of the run holding target, or "" when it is free.
func (l *Locker) Holder(ctx context.Context, target string) (string, error) {
	token, err := l.client.Get(ctx, l.key(target)).Result()
	if errors.Is(err, backend.Nil) {
		return "", nil
	}
	return token, err
}
