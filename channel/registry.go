package channel

import (
	"github.com/pkg/errors"
	"perun.network/perun-btc-paychan/transaction"
	"polycry.pt/poly-go/sync"
)

// Registry is a concurrently safe map from channels to their providers.
// It is stable in the sense that it does not allow overwriting of providers.
type Registry interface {
	// Set stores the provider for the given channel ID.
	// It errors if the registry already holds a different provider for the ID.
	Set(id transaction.ID, p *Provider) error

	// Get returns the provider for the given channel ID and true, iff there
	// is one.
	Get(id transaction.ID) (*Provider, bool)

	// IDs returns the IDs of all registered channels.
	IDs() []transaction.ID
}

type registry struct {
	lock      sync.Mutex
	providers map[transaction.ID]*Provider
}

func NewRegistry() Registry {
	return &registry{
		providers: make(map[transaction.ID]*Provider),
	}
}

func (r *registry) Get(id transaction.ID) (*Provider, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	p, ok := r.providers[id]
	return p, ok
}

func (r *registry) Set(id transaction.ID, p *Provider) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	old, ok := r.providers[id]
	if ok {
		if old == p {
			return nil
		}
		return errors.Errorf("rewrite of channel %v in stable registry", id)
	}
	r.providers[id] = p
	return nil
}

func (r *registry) IDs() []transaction.ID {
	r.lock.Lock()
	defer r.lock.Unlock()
	ids := make([]transaction.ID, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}
