package engine

import (
	"sync"
)

// ResizeEvent is the raw document size reported by one client
type ResizeEvent struct {
	ClientID string
	Width    float64
	Height   float64
}

// ResizeDispatcher fans the resize events of every client out to the
// subscribed engines. There is one per process.
type ResizeDispatcher struct {
	lock          sync.Mutex
	subscriptions map[string]*ResizeSubscription
	last          map[string]ResizeEvent
	// routes maps a client to the owner rendering it
	routes map[string]string
}

// ResizeSubscription is the handle returned by Acquire
type ResizeSubscription struct {
	owner      string
	tag        string
	onResize   func(ResizeEvent)
	dispatcher *ResizeDispatcher
	once       sync.Once
}

func NewResizeDispatcher() *ResizeDispatcher {
	return &ResizeDispatcher{
		subscriptions: make(map[string]*ResizeSubscription),
		last:          make(map[string]ResizeEvent),
		routes:        make(map[string]string),
	}
}

// Acquire subscribes owner. An owner holds at most one subscription,
// acquiring again releases the previous one.
func (d *ResizeDispatcher) Acquire(owner, tag string, onResize func(ResizeEvent)) *ResizeSubscription {
	sub := &ResizeSubscription{
		owner:      owner,
		tag:        tag,
		onResize:   onResize,
		dispatcher: d,
	}

	d.lock.Lock()
	d.subscriptions[owner] = sub
	d.lock.Unlock()

	return sub
}

// Release is idempotent and never removes a newer subscription of the same owner
func (s *ResizeSubscription) Release() {
	s.once.Do(func() {
		d := s.dispatcher

		d.lock.Lock()
		if d.subscriptions[s.owner] == s {
			delete(d.subscriptions, s.owner)
		}
		d.lock.Unlock()
	})
}

func (s *ResizeSubscription) Tag() string {
	return s.tag
}

// Route sends the resizes of clientID to owner only
func (d *ResizeDispatcher) Route(clientID, owner string) {
	d.lock.Lock()
	d.routes[clientID] = owner
	d.lock.Unlock()
}

// Unroute drops the route of clientID unless another owner took it over
func (d *ResizeDispatcher) Unroute(clientID, owner string) {
	d.lock.Lock()
	if d.routes[clientID] == owner {
		delete(d.routes, clientID)
	}
	d.lock.Unlock()
}

// Dispatch delivers the event to the owner the client is routed to, unless it
// repeats the last size of that client. The size is kept either way so an
// owner attaching the client later starts from it.
func (d *ResizeDispatcher) Dispatch(ev ResizeEvent) bool {
	d.lock.Lock()
	if last, ok := d.last[ev.ClientID]; ok && last == ev {
		d.lock.Unlock()
		return false
	}
	d.last[ev.ClientID] = ev

	var onResize func(ResizeEvent)
	if owner, ok := d.routes[ev.ClientID]; ok {
		if sub := d.subscriptions[owner]; sub != nil {
			onResize = sub.onResize
		}
	}
	d.lock.Unlock()

	if onResize != nil {
		onResize(ev)
	}
	return true
}

// Forget drops the last known size and the route of a disconnected client
func (d *ResizeDispatcher) Forget(clientID string) {
	d.lock.Lock()
	delete(d.last, clientID)
	delete(d.routes, clientID)
	d.lock.Unlock()
}

func (d *ResizeDispatcher) Last(clientID string) (ResizeEvent, bool) {
	d.lock.Lock()
	defer d.lock.Unlock()

	ev, ok := d.last[clientID]
	return ev, ok
}

// Len is the number of live subscriptions
func (d *ResizeDispatcher) Len() int {
	d.lock.Lock()
	defer d.lock.Unlock()

	return len(d.subscriptions)
}
