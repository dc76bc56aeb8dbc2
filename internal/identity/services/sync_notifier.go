package services

import (
	"log"
	"sync"

	"electromart/internal/identity/models"
	"electromart/pkg/syncwire"
)

// Notifier pushes identity changes to the store service. Implementations must
// not block the caller on delivery.
type Notifier interface {
	NotifyUpsert(user *models.User)
	NotifyDelete(userID string)
}

// SyncNotifier delivers user create/update/delete events to the store service
// over the internal sync channel. Messages for the same user id go out in
// submission order, including retries, so a retried upsert can never land
// after a later delete for that user. Different ids deliver independently.
// The local write is never rolled back on failure, since this service is the
// source of truth and the store converges on the next push touching the
// same id.
type SyncNotifier struct {
	client *syncwire.Client

	mu     sync.Mutex
	queues map[string]*deliveryQueue
}

// deliveryQueue holds the not-yet-delivered messages for one user id. It is
// drained by a single goroutine at a time.
type deliveryQueue struct {
	pending []func()
	running bool
}

// NewSyncNotifier creates a notifier targeting the store service.
func NewSyncNotifier(client *syncwire.Client) *SyncNotifier {
	return &SyncNotifier{
		client: client,
		queues: make(map[string]*deliveryQueue),
	}
}

// NotifyUpsert pushes the full current state of a user. Fire-and-forget.
func (n *SyncNotifier) NotifyUpsert(user *models.User) {
	snapshot := *user
	n.enqueue(snapshot.ID, func() {
		if err := n.PushUpsert(&snapshot); err != nil {
			log.Printf("Failed to sync upsert for user %s after retries: %v", snapshot.ID, err)
		}
	})
}

// NotifyDelete pushes a deletion by id. Fire-and-forget.
func (n *SyncNotifier) NotifyDelete(userID string) {
	n.enqueue(userID, func() {
		if err := n.PushDelete(userID); err != nil {
			log.Printf("Failed to sync delete for user %s after retries: %v", userID, err)
		}
	})
}

// enqueue appends a delivery to the user's queue and starts a drain goroutine
// if none is running for that id.
func (n *SyncNotifier) enqueue(userID string, deliver func()) {
	n.mu.Lock()
	q, ok := n.queues[userID]
	if !ok {
		q = &deliveryQueue{}
		n.queues[userID] = q
	}
	q.pending = append(q.pending, deliver)
	if q.running {
		n.mu.Unlock()
		return
	}
	q.running = true
	n.mu.Unlock()

	go n.drain(userID, q)
}

func (n *SyncNotifier) drain(userID string, q *deliveryQueue) {
	for {
		n.mu.Lock()
		if len(q.pending) == 0 {
			delete(n.queues, userID)
			n.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		n.mu.Unlock()

		next()
	}
}

// PushUpsert synchronously delivers an upsert, retrying per the client policy.
func (n *SyncNotifier) PushUpsert(user *models.User) error {
	msg := syncwire.UserUpsert{
		ID:           user.ID,
		Email:        syncwire.Str(user.Email),
		Name:         syncwire.Str(user.Name),
		Role:         syncwire.Str(string(user.Role)),
		TokenVersion: syncwire.Int(user.TokenVersion),
		Deleted:      syncwire.Bool(user.Deleted),
	}
	return n.client.PostJSON("/internal/sync/users", msg)
}

// PushDelete synchronously delivers a deletion, retrying per the client policy.
func (n *SyncNotifier) PushDelete(userID string) error {
	return n.client.Delete("/internal/sync/users/" + userID)
}
