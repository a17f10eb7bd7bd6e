package locks

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishFanOut(t *testing.T) {
	h := NewHub(4)

	subA1, cancelA1 := h.Subscribe("player-a")
	subA2, cancelA2 := h.Subscribe("player-a")
	subB, cancelB := h.Subscribe("player-b")
	defer cancelA1()
	defer cancelA2()
	defer cancelB()

	ev := Event{PlayerID: "player-a", Type: EventAcquired, Lock: &EditLock{CoachName: "Alex"}}
	h.Publish(ev)

	for _, sub := range []*Subscriber{subA1, subA2} {
		select {
		case got := <-sub.Ch:
			assert.Equal(t, ev, got)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}

	select {
	case got := <-subB.Ch:
		t.Fatalf("player-b subscriber got event for player-a: %+v", got)
	default:
	}
}

func TestHubUnsubscribeClosesChannels(t *testing.T) {
	h := NewHub(4)

	sub, cancel := h.Subscribe("player-a")
	cancel()

	_, open := <-sub.Ch
	assert.False(t, open)

	select {
	case <-sub.Done:
	default:
		t.Fatal("Done channel not closed")
	}

	// Double cancel is safe.
	cancel()

	subs, _ := h.Stats()
	assert.Zero(t, subs)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	h := NewHub(1)

	_, cancel := h.Subscribe("player-a")
	defer cancel()

	// Nobody drains, so only the first event fits.
	h.Publish(Event{PlayerID: "player-a", Type: EventAcquired})
	h.Publish(Event{PlayerID: "player-a", Type: EventReleased})
	h.Publish(Event{PlayerID: "player-a", Type: EventExpired})

	_, dropped := h.Stats()
	assert.Equal(t, uint64(2), dropped)
}

func TestHubConcurrentSubscribePublish(t *testing.T) {
	h := NewHub(256)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, cancel := h.Subscribe("player-a")
			for range 10 {
				select {
				case <-sub.Ch:
				case <-time.After(time.Second):
				}
			}
			cancel()
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				h.Publish(Event{PlayerID: "player-a", Type: EventAcquired})
			}
		}()
	}
	wg.Wait()

	subs, _ := h.Stats()
	require.Zero(t, subs)
}
