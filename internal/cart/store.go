package cart

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/storage"
)

// Quantity bounds per cart line.
const (
	MinQuantity = 1
	MaxQuantity = 10
)

// Subscriber receives a consistent cart snapshot after every mutation,
// synchronously and in subscription order.
type Subscriber func(models.Cart)

// Store owns the local cart. In-memory state is authoritative for the
// session; every mutation is persisted immediately and fanned out to
// subscribers before the mutating call returns. Persistence failures are
// logged and swallowed so a full disk never breaks the cart.
type Store struct {
	mu   sync.Mutex
	cart models.Cart
	kv   *storage.Store
	subs []Subscriber
}

// NewStore creates a cart store and hydrates it from persisted storage.
// A missing or unparsable snapshot yields an empty cart.
func NewStore(kv *storage.Store) *Store {
	s := &Store{kv: kv}
	s.cart = s.load()
	return s
}

func (s *Store) load() models.Cart {
	raw, ok, err := s.kv.Get(storage.KeyCart)
	if err != nil {
		log.Printf("[Cart] load failed, starting empty: %v", err)
		return models.Cart{}
	}
	if !ok {
		return models.Cart{}
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		log.Printf("[Cart] persisted cart unparsable, starting empty: %v", err)
		return models.Cart{}
	}
	return models.Cart{Lines: lines}
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Add merges qty units of the product into the cart. An existing line is
// incremented; a new one is appended. Quantity is clamped to MaxQuantity.
func (s *Store) Add(line models.CartLine, qty int) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	if i := s.cart.Find(line.ProductID); i >= 0 {
		s.cart.Lines[i].Quantity = clampQuantity(s.cart.Lines[i].Quantity + qty)
	} else {
		line.Quantity = clampQuantity(qty)
		s.cart.Lines = append(s.cart.Lines, line)
	}
	snapshot := s.persistLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Remove deletes the matching line; removing an absent product is a no-op.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	i := s.cart.Find(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.cart.Lines = append(s.cart.Lines[:i], s.cart.Lines[i+1:]...)
	snapshot := s.persistLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// SetQuantity replaces a line's quantity. qty <= 0 removes the line; larger
// values clamp to MaxQuantity.
func (s *Store) SetQuantity(productID string, qty int) {
	if qty <= 0 {
		s.Remove(productID)
		return
	}

	s.mu.Lock()
	i := s.cart.Find(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.cart.Lines[i].Quantity = clampQuantity(qty)
	snapshot := s.persistLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Clear empties the cart. Used after a successful order submission.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cart = models.Cart{}
	snapshot := s.persistLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Seed replaces an empty cart with lines pulled from the remote profile.
// A non-empty local cart wins and is left untouched.
func (s *Store) Seed(lines []models.CartLine) {
	s.mu.Lock()
	if !s.cart.Empty() {
		s.mu.Unlock()
		return
	}
	s.cart = models.Cart{Lines: sanitize(lines)}
	snapshot := s.persistLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Subscribe registers a subscriber for mutation notifications.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) persistLocked() models.Cart {
	snapshot := s.cart.Clone()

	lines := snapshot.Lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		log.Printf("[Cart] marshal failed, in-memory state kept: %v", err)
		return snapshot
	}
	if err := s.kv.Put(storage.KeyCart, string(raw)); err != nil {
		log.Printf("[Cart] persist failed, in-memory state kept: %v", err)
	}
	return snapshot
}

func (s *Store) notify(snapshot models.Cart) {
	s.mu.Lock()
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot.Clone())
	}
}

func clampQuantity(qty int) int {
	if qty < MinQuantity {
		return MinQuantity
	}
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}

// sanitize drops structurally invalid lines and merges duplicates so a
// corrupt remote snapshot cannot violate cart invariants.
func sanitize(lines []models.CartLine) []models.CartLine {
	var clean []models.CartLine
	for _, l := range lines {
		if !l.Valid() {
			continue
		}
		merged := false
		for i := range clean {
			if clean[i].ProductID == l.ProductID {
				clean[i].Quantity = clampQuantity(clean[i].Quantity + l.Quantity)
				merged = true
				break
			}
		}
		if !merged {
			l.Quantity = clampQuantity(l.Quantity)
			clean = append(clean, l)
		}
	}
	return clean
}
