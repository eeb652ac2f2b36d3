package addressbook

import (
	"context"
	"log"
	"sync"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

// SelectionListener is notified whenever the current selection changes as a
// result of a refresh, delete, or explicit Select. nil means no selection.
type SelectionListener func(*models.Address)

// Directory caches the user's saved addresses and tracks the current
// selection. The backend owns the data; every write goes through it and the
// cached copy is rebuilt from its responses. Default flags in particular are
// never trusted after a write, since setting a new default demotes the old
// one server-side.
type Directory struct {
	api *services.Client

	mu        sync.Mutex
	addresses []models.Address
	selected  *models.Address
	seq       uint64
	listener  SelectionListener
}

// NewDirectory builds an empty directory around the backend client.
func NewDirectory(api *services.Client) *Directory {
	return &Directory{api: api}
}

// OnSelection registers the selection listener. At most one is supported;
// the orchestrator multiplexes further.
func (d *Directory) OnSelection(fn SelectionListener) {
	d.mu.Lock()
	d.listener = fn
	d.mu.Unlock()
}

// Refresh fetches the address list and reselects per policy: the default
// address if one exists, else the first returned, else none. An anonymous
// session resolves to an empty list without error. A response that arrives
// after a newer refresh started is discarded.
func (d *Directory) Refresh(ctx context.Context) error {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.mu.Unlock()

	addresses, err := d.api.ListAddresses(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	if seq != d.seq {
		// A newer refresh superseded this one; applying would clobber it.
		d.mu.Unlock()
		log.Printf("[Addresses] stale refresh response discarded")
		return nil
	}
	d.addresses = addresses
	d.selected = pickDefault(d.addresses)
	selected := d.selected
	listener := d.listener
	d.mu.Unlock()

	if listener != nil {
		listener(selected)
	}
	return nil
}

// Addresses returns a copy of the cached list.
func (d *Directory) Addresses() []models.Address {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Address, len(d.addresses))
	copy(out, d.addresses)
	return out
}

// Selected returns the currently selected address, or nil.
func (d *Directory) Selected() *models.Address {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selected == nil {
		return nil
	}
	copied := *d.selected
	return &copied
}

// Select makes the address with the given id current. Unknown ids are
// ignored so a stale UI reference cannot corrupt the selection.
func (d *Directory) Select(id string) bool {
	d.mu.Lock()
	var found *models.Address
	for i := range d.addresses {
		if d.addresses[i].ID == id {
			found = &d.addresses[i]
			break
		}
	}
	if found == nil {
		d.mu.Unlock()
		return false
	}
	copied := *found
	d.selected = &copied
	listener := d.listener
	d.mu.Unlock()

	if listener != nil {
		listener(&copied)
	}
	return true
}

// Create validates and stores a new address, then refreshes so selection
// policy and server-assigned flags take effect.
func (d *Directory) Create(ctx context.Context, fields models.AddressFields) error {
	if err := utils.ValidateStruct(fields); err != nil {
		return err
	}

	if _, err := d.api.CreateAddress(ctx, fields); err != nil {
		return err
	}
	return d.Refresh(ctx)
}

// Update validates and saves changed fields, then refreshes: the backend may
// have demoted another address's default flag and the cached copies cannot
// be patched up locally.
func (d *Directory) Update(ctx context.Context, id string, fields models.AddressFields) error {
	if err := utils.ValidateStruct(fields); err != nil {
		return err
	}

	if _, err := d.api.UpdateAddress(ctx, id, fields); err != nil {
		return err
	}
	return d.Refresh(ctx)
}

// Delete removes an address. On success the cached list is pruned locally;
// if the deleted address was selected, the first remaining address takes
// over, or the selection clears when none remain.
func (d *Directory) Delete(ctx context.Context, id string) error {
	if err := d.api.DeleteAddress(ctx, id); err != nil {
		return err
	}

	d.mu.Lock()
	kept := d.addresses[:0]
	for _, a := range d.addresses {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	d.addresses = kept

	reselected := false
	if d.selected != nil && d.selected.ID == id {
		if len(d.addresses) > 0 {
			copied := d.addresses[0]
			d.selected = &copied
		} else {
			d.selected = nil
		}
		reselected = true
	}
	selected := d.selected
	listener := d.listener
	d.mu.Unlock()

	if reselected && listener != nil {
		listener(selected)
	}
	return nil
}

func pickDefault(addresses []models.Address) *models.Address {
	for i := range addresses {
		if addresses[i].IsDefault {
			copied := addresses[i]
			return &copied
		}
	}
	if len(addresses) > 0 {
		copied := addresses[0]
		return &copied
	}
	return nil
}
