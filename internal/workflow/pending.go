package workflow

import (
	"sync"

	"github.com/google/uuid"
)

// Pending allows one in-flight mutation per entity id. The zero value is
// ready to use.
type Pending struct {
	mu   sync.Mutex
	busy map[uuid.UUID]struct{}
}

// Begin marks id as busy and returns the func that releases it. It fails
// fast with ErrBusy when id is already pending.
func (p *Pending) Begin(id uuid.UUID) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.busy == nil {
		p.busy = make(map[uuid.UUID]struct{})
	}
	if _, ok := p.busy[id]; ok {
		return nil, ErrBusy
	}
	p.busy[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.busy, id)
			p.mu.Unlock()
		})
	}, nil
}

func (p *Pending) Busy(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.busy[id]
	return ok
}
