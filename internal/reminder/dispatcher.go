package reminder

import (
	"sync"
)

type deliveryKey struct {
	taskID int64
	due    string
}

// Dispatcher turns level-triggered scan results into at most one
// notification per task and due date. A task that leaves the window is
// forgotten, so moving its due date arms it again.
type Dispatcher struct {
	mu       sync.Mutex
	notifier Notifier
	sent     map[deliveryKey]struct{}
}

// NewDispatcher creates a dispatcher that delivers through n.
func NewDispatcher(n Notifier) *Dispatcher {
	return &Dispatcher{notifier: n, sent: make(map[deliveryKey]struct{})}
}

// Dispatch notifies for every result not delivered before and returns
// how many notifications were sent.
func (d *Dispatcher) Dispatch(results []Due) int {
	d.mu.Lock()
	current := make(map[deliveryKey]struct{}, len(results))
	var fresh []Due
	for _, r := range results {
		k := keyOf(r)
		current[k] = struct{}{}
		if _, ok := d.sent[k]; !ok {
			fresh = append(fresh, r)
		}
	}
	d.sent = current
	d.mu.Unlock()

	for _, r := range fresh {
		title, body := Message(r)
		d.notifier.Notify(title, body)
	}
	return len(fresh)
}

// Reset forgets every delivery.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	d.sent = make(map[deliveryKey]struct{})
	d.mu.Unlock()
}

func keyOf(r Due) deliveryKey {
	k := deliveryKey{taskID: r.Task.ID}
	if r.Task.DueDate != nil {
		k.due = *r.Task.DueDate
	}
	return k
}
