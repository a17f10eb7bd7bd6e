package locks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces lock keys in the presence store.
	keyPrefix = "playerLocks:"
	// eventsChannel carries lock-change events between server instances.
	eventsChannel = "playerLocks.events"
)

// acquireScript implements compare-and-set lock acquisition: deny only when a
// different coach holds a non-stale lock, otherwise take it (same-coach
// re-entry and stale takeover are silent). Returns the blocking holder's
// payload on denial, nil on grant.
//
// KEYS[1] lock key; ARGV[1] coach, ARGV[2] now millis, ARGV[3] staleness
// window millis, ARGV[4] new lock payload, ARGV[5] TTL millis.
var acquireScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local lock = cjson.decode(cur)
  if lock.coachName ~= ARGV[1] and (tonumber(ARGV[2]) - lock.timestamp) < tonumber(ARGV[3]) then
    return cur
  end
end
redis.call('SET', KEYS[1], ARGV[4], 'PX', ARGV[5])
return false
`)

// refreshScript extends the lock TTL only while the caller still holds it, so
// a heartbeat can never prolong a rival's lock after a takeover.
var refreshScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then return 0 end
local lock = cjson.decode(cur)
if lock.coachName == ARGV[1] then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
  return 1
end
return 0
`)

// Options tunes the lock manager.
type Options struct {
	// StaleAfter is the staleness window, measured from acquisition. It also
	// doubles as the key TTL, the disconnect-cleanup backstop.
	StaleAfter time.Duration
	// HeartbeatEvery is the TTL refresh interval for live sessions.
	HeartbeatEvery time.Duration
	// EventBuffer is the per-subscriber channel buffer size.
	EventBuffer int
}

// Manager is the advisory edit-lock manager over the ephemeral presence
// store. The lock gates the editing UI, not the document store; the merge
// engine is the correctness backstop when two clients race past it.
type Manager struct {
	rdb  *redis.Client
	hub  *Hub
	opts Options
	log  *slog.Logger
	now  func() time.Time
}

// NewManager creates a lock manager. Call Run to start delivering
// subscription events.
func NewManager(rdb *redis.Client, opts Options, log *slog.Logger) *Manager {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 5 * time.Minute
	}
	if opts.HeartbeatEvery <= 0 {
		opts.HeartbeatEvery = 30 * time.Second
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	return &Manager{
		rdb:  rdb,
		hub:  NewHub(opts.EventBuffer),
		opts: opts,
		log:  log,
		now:  time.Now,
	}
}

func lockKey(playerID string) string {
	return keyPrefix + playerID
}

// Acquire attempts to take the editing lock for a player. Denied only when a
// different coach holds a fresh lock; stale locks and the caller's own lock
// are taken over silently.
func (m *Manager) Acquire(ctx context.Context, playerID, coachName string) (*Acquisition, error) {
	now := m.now()
	lock := EditLock{CoachName: coachName, Timestamp: now.UnixMilli()}
	payload, err := json.Marshal(lock)
	if err != nil {
		return nil, fmt.Errorf("marshal lock: %w", err)
	}

	res, err := acquireScript.Run(ctx, m.rdb, []string{lockKey(playerID)},
		coachName,
		now.UnixMilli(),
		m.opts.StaleAfter.Milliseconds(),
		payload,
		m.opts.StaleAfter.Milliseconds(),
	).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	if holder, ok := res.(string); ok {
		var held EditLock
		if err := json.Unmarshal([]byte(holder), &held); err != nil {
			return nil, fmt.Errorf("decode holder: %w", err)
		}
		m.log.Info("lock denied", "player_id", playerID, "coach", coachName, "held_by", held.CoachName)
		return &Acquisition{Granted: false, HeldBy: &held}, nil
	}

	m.publish(ctx, Event{PlayerID: playerID, Type: EventAcquired, Lock: &lock})
	m.log.Debug("lock acquired", "player_id", playerID, "coach", coachName)
	return &Acquisition{Granted: true, HeldBy: &lock}, nil
}

// Release removes the lock if one exists. Idempotent, and deliberately free
// of any ownership check: the lock is advisory, and any caller may clear it
// on explicit close.
func (m *Manager) Release(ctx context.Context, playerID string) error {
	removed, err := m.rdb.Del(ctx, lockKey(playerID)).Result()
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if removed > 0 {
		m.publish(ctx, Event{PlayerID: playerID, Type: EventReleased})
		m.log.Debug("lock released", "player_id", playerID)
	}
	return nil
}

// Get returns the current lock for a player, or nil when unlocked.
func (m *Manager) Get(ctx context.Context, playerID string) (*EditLock, error) {
	payload, err := m.rdb.Get(ctx, lockKey(playerID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lock: %w", err)
	}
	var lock EditLock
	if err := json.Unmarshal([]byte(payload), &lock); err != nil {
		return nil, fmt.Errorf("decode lock: %w", err)
	}
	return &lock, nil
}

// List returns every live lock keyed by player ID.
func (m *Manager) List(ctx context.Context) (map[string]EditLock, error) {
	out := map[string]EditLock{}

	iter := m.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		payload, err := m.rdb.Get(ctx, key).Result()
		if err == redis.Nil {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, fmt.Errorf("list locks: %w", err)
		}
		var lock EditLock
		if err := json.Unmarshal([]byte(payload), &lock); err != nil {
			m.log.Warn("skipping undecodable lock", "key", key, "error", err)
			continue
		}
		out[strings.TrimPrefix(key, keyPrefix)] = lock
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan locks: %w", err)
	}
	return out, nil
}

// Sweep removes every lock older than the staleness window, regardless of
// holder. Any client that lists the lock set runs this opportunistically.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	all, err := m.List(ctx)
	if err != nil {
		return 0, err
	}

	now := m.now()
	removed := 0
	for playerID, lock := range all {
		if !lock.StaleAfter(m.opts.StaleAfter, now) {
			continue
		}
		if err := m.Release(ctx, playerID); err != nil {
			m.log.Warn("stale lock sweep failed", "player_id", playerID, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		m.log.Info("stale locks swept", "removed", removed)
	}
	return removed, nil
}

// Subscribe returns a channel of lock events for one player plus a cancel
// func. Events flow only while Run is active.
func (m *Manager) Subscribe(playerID string) (<-chan Event, func()) {
	sub, cancel := m.hub.Subscribe(playerID)
	return sub.Ch, cancel
}

// Heartbeat keeps the caller's lock alive until ctx is cancelled or the lock
// changes hands. Stopping the heartbeat lets the TTL expire the lock, which
// is the disconnect-cleanup path for crashed or vanished clients.
func (m *Manager) Heartbeat(ctx context.Context, playerID, coachName string) {
	ticker := time.NewTicker(m.opts.HeartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			held, err := refreshScript.Run(ctx, m.rdb, []string{lockKey(playerID)},
				coachName, m.opts.StaleAfter.Milliseconds()).Int()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				m.log.Warn("lock heartbeat failed", "player_id", playerID, "error", err)
				continue
			}
			if held == 0 {
				m.log.Debug("lock no longer held, stopping heartbeat", "player_id", playerID, "coach", coachName)
				return
			}
		}
	}
}

// Run pumps lock events from the presence store into local subscribers until
// ctx is cancelled. It also watches key expirations so subscribers learn
// about disconnect cleanup, when the store has keyspace notifications
// enabled.
func (m *Manager) Run(ctx context.Context) error {
	pubsub := m.rdb.Subscribe(ctx, eventsChannel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			m.log.Warn("failed to close lock event subscription", "error", err)
		}
	}()

	// Best effort: without this config, expirations simply surface later via
	// the stale-lock sweep instead.
	if err := m.rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		m.log.Debug("keyspace notifications unavailable", "error", err)
	}
	expired := m.rdb.PSubscribe(ctx, "__keyevent@*__:expired")
	defer func() {
		if err := expired.Close(); err != nil {
			m.log.Warn("failed to close expiry subscription", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				m.log.Warn("undecodable lock event", "error", err)
				continue
			}
			m.hub.Publish(ev)
		case msg, ok := <-expired.Channel():
			if !ok {
				return nil
			}
			if !strings.HasPrefix(msg.Payload, keyPrefix) {
				continue
			}
			m.hub.Publish(Event{
				PlayerID: strings.TrimPrefix(msg.Payload, keyPrefix),
				Type:     EventExpired,
			})
		}
	}
}

// publish fans an event out via the presence store so every server instance
// sees it. Failures are logged, not surfaced: event delivery is best effort
// and the merge engine stays correct without it.
func (m *Manager) publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		m.log.Warn("marshal lock event", "error", err)
		return
	}
	if err := m.rdb.Publish(ctx, eventsChannel, payload).Err(); err != nil {
		m.log.Warn("publish lock event", "player_id", ev.PlayerID, "error", err)
	}
}
