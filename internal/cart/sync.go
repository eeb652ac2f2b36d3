package cart

import (
	"context"
	"log"
	"time"

	"github.com/example/storefront/internal/models"
)

// ProfilePusher is the remote side of cart sync.
type ProfilePusher interface {
	PushCart(ctx context.Context, lines []models.CartLine) error
	FetchProfileCart(ctx context.Context) ([]models.CartLine, error)
}

// AuthState gates sync on the session's auth status.
type AuthState interface {
	Authenticated() bool
}

// Synchronizer mirrors the local cart to the backend profile, best effort.
// Pushes are debounced; a failed push is dropped and the next mutation's
// cycle retries with the then-latest snapshot. Anonymous sessions never push.
type Synchronizer struct {
	remote  ProfilePusher
	session AuthState
	coal    *Coalescer
	timeout time.Duration
}

// NewSynchronizer builds a synchronizer with the given debounce window.
func NewSynchronizer(remote ProfilePusher, session AuthState, debounce time.Duration) *Synchronizer {
	s := &Synchronizer{
		remote:  remote,
		session: session,
		timeout: 15 * time.Second,
	}
	s.coal = NewCoalescer(debounce, s.push)
	return s
}

// Attach subscribes the synchronizer to the store's mutations.
func (s *Synchronizer) Attach(store *Store) {
	store.Subscribe(func(snapshot models.Cart) {
		if !s.session.Authenticated() {
			return
		}
		s.coal.Schedule(snapshot)
	})
}

// SeedFromRemote performs the once-per-session pull: only when the local
// cart is empty and the session is authenticated, and a non-empty local cart
// always wins. Failures are logged and ignored.
func (s *Synchronizer) SeedFromRemote(ctx context.Context, store *Store) {
	if !s.session.Authenticated() {
		return
	}
	if !store.Snapshot().Empty() {
		return
	}

	lines, err := s.remote.FetchProfileCart(ctx)
	if err != nil {
		log.Printf("[Sync] remote cart pull failed: %v", err)
		return
	}
	if len(lines) == 0 {
		return
	}

	store.Seed(lines)
	log.Printf("[Sync] seeded cart with %d remote lines", len(lines))
}

// Stop cancels any pending push.
func (s *Synchronizer) Stop() {
	s.coal.Stop()
}

// Flush pushes the given snapshot immediately if authenticated. Called at
// session teardown so the last edit survives.
func (s *Synchronizer) Flush(snapshot models.Cart) {
	if !s.session.Authenticated() {
		return
	}
	s.coal.Flush(snapshot)
}

func (s *Synchronizer) push(snapshot models.Cart) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	outbound := make([]models.CartLine, 0, len(snapshot.Lines))
	for _, l := range snapshot.Lines {
		// Defensive: stale persisted data may carry corrupt lines. They are
		// dropped from the payload but stay in the local cart.
		if !l.Valid() {
			continue
		}
		outbound = append(outbound, l)
	}

	if err := s.remote.PushCart(ctx, outbound); err != nil {
		log.Printf("[Sync] cart push dropped: %v", err)
	}
}
