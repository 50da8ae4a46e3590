// Package broadcast fans game snapshots out to live observers. Each game gets
// its own topic holding the last published snapshot and the current
// subscriptions; topics for games nobody watches are reclaimed after a grace
// period so rapid reconnects don't rebuild state.
package broadcast

import (
	"sync"
	"time"

	"mahjong-ledger/internal/ledger"
)

// DefaultGracePeriod is how long a topic with no subscribers is kept before
// teardown.
const DefaultGracePeriod = 5 * time.Second

type Broker struct {
	mu     sync.Mutex
	grace  time.Duration
	topics map[uint]*topic
}

type topic struct {
	mu   sync.Mutex
	last *ledger.Snapshot
	subs map[*Subscription]struct{}
	reap *time.Timer
}

func NewBroker(grace time.Duration) *Broker {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Broker{
		grace:  grace,
		topics: make(map[uint]*topic),
	}
}

// lockTopic returns the topic for gameID with its mutex held, creating it if
// absent. The topic lock is taken before the map lock is released so the reap
// path (which locks in the same order) cannot drop a topic between lookup and
// use. The caller must unlock the topic.
func (b *Broker) lockTopic(gameID uint) *topic {
	b.mu.Lock()
	t := b.topics[gameID]
	if t == nil {
		t = &topic{subs: make(map[*Subscription]struct{})}
		b.topics[gameID] = t
	}
	t.mu.Lock()
	b.mu.Unlock()
	return t
}

// Subscribe registers a new observer for gameID, creating the topic if
// needed. If a snapshot was already published the subscription sees it
// immediately. A pending teardown for the topic is cancelled.
func (b *Broker) Subscribe(gameID uint) *Subscription {
	sub := &Subscription{
		broker: b,
		gameID: gameID,
		out:    make(chan ledger.Snapshot),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	t := b.lockTopic(gameID)
	sub.topic = t
	if t.reap != nil {
		t.reap.Stop()
		t.reap = nil
	}
	t.subs[sub] = struct{}{}
	if t.last != nil {
		sub.enqueue(*t.last)
	}
	t.mu.Unlock()

	go sub.deliver()
	return sub
}

// Publish stores snapshot as the topic's last value and enqueues it to every
// live subscription. It never blocks on a consumer; a publish with no
// subscribers only refreshes the last value.
func (b *Broker) Publish(gameID uint, snapshot ledger.Snapshot) {
	t := b.lockTopic(gameID)
	t.last = &snapshot
	for sub := range t.subs {
		sub.enqueue(snapshot)
	}
	t.mu.Unlock()
}

func (b *Broker) unsubscribe(sub *Subscription) {
	t := sub.topic
	t.mu.Lock()
	if _, ok := t.subs[sub]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.subs, sub)
	if len(t.subs) == 0 {
		if t.reap != nil {
			t.reap.Stop()
		}
		t.reap = time.AfterFunc(b.grace, func() {
			b.reapTopic(sub.gameID, t)
		})
	}
	t.mu.Unlock()
	sub.stop()
}

// reapTopic drops the topic if it is still the registered one and still has
// no subscribers when the grace timer fires.
func (b *Broker) reapTopic(gameID uint, t *topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.topics[gameID] != t {
		return
	}
	t.mu.Lock()
	empty := len(t.subs) == 0
	t.mu.Unlock()
	if empty {
		delete(b.topics, gameID)
	}
}

// TopicCount reports how many topics are currently alive.
func (b *Broker) TopicCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics)
}

// Subscription is one observer's handle on a game topic. Snapshots arrive on
// Updates in publish order; the channel is closed when the subscription ends.
type Subscription struct {
	broker *Broker
	gameID uint
	topic  *topic

	out  chan ledger.Snapshot
	done chan struct{}
	wake chan struct{}

	mu      sync.Mutex
	queue   []ledger.Snapshot
	stopped bool
}

// Updates returns the snapshot stream for this subscription.
func (s *Subscription) Updates() <-chan ledger.Snapshot {
	return s.out
}

// Close unregisters the subscription. When the topic's subscriber set becomes
// empty the broker starts its teardown grace timer.
func (s *Subscription) Close() {
	s.broker.unsubscribe(s)
}

// enqueue appends without blocking; the delivery goroutine drains in order,
// so a slow consumer delays only itself.
func (s *Subscription) enqueue(snapshot ledger.Snapshot) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, snapshot)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()
	close(s.done)
}

func (s *Subscription) deliver() {
	defer close(s.out)
	for {
		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			next := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case s.out <- next:
			case <-s.done:
				return
			}
		}
		select {
		case <-s.wake:
		case <-s.done:
			return
		}
	}
}
