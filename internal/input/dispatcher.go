// Package input turns polled host input into DOM-style gesture events so
// the unlocker can listen to it like a document.
package input

import (
	"slices"
	"sync"
)

// Dispatcher is an unlock.EventTarget fed by Dispatch.
type Dispatcher struct {
	mu        sync.Mutex
	nextID    int
	listeners map[string]map[int]func(string)
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: map[string]map[int]func(string){}}
}

// Listen registers fn for eventType.
func (d *Dispatcher) Listen(eventType string, fn func(string)) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	if d.listeners[eventType] == nil {
		d.listeners[eventType] = map[int]func(string){}
	}
	d.listeners[eventType][id] = fn
	return func() {
		d.mu.Lock()
		delete(d.listeners[eventType], id)
		d.mu.Unlock()
	}, nil
}

// Dispatch delivers eventType to its listeners in registration order.
// Listeners may remove themselves while being called.
func (d *Dispatcher) Dispatch(eventType string) int {
	d.mu.Lock()
	set := d.listeners[eventType]
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	d.mu.Unlock()
	slices.Sort(ids)

	delivered := 0
	for _, id := range ids {
		d.mu.Lock()
		fn, ok := d.listeners[eventType][id]
		d.mu.Unlock()
		if !ok {
			continue
		}
		fn(eventType)
		delivered++
	}
	return delivered
}

// Count returns the number of listeners across all event types.
func (d *Dispatcher) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, set := range d.listeners {
		n += len(set)
	}
	return n
}
