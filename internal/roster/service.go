package roster

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Service handles roster business logic
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService creates a new roster service
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// SyncResult reports how many rows of an import batch were stored.
type SyncResult struct {
	Total   int `json:"total"`
	Success int `json:"success"`
}

// Sync upserts an import batch into the store. Existing jersey numbers are
// preserved by the repository; notes live in their own subsystem and are
// never touched by a re-import.
func (s *Service) Sync(ctx context.Context, players []*Player) (*SyncResult, error) {
	res := &SyncResult{Total: len(players)}
	for _, p := range players {
		if err := s.repo.Upsert(ctx, p); err != nil {
			s.log.Error(ErrSyncRoster.Error(), "error", err, "player_id", p.ID)
			return res, ErrSyncRoster
		}
		res.Success++
	}
	s.log.Info("roster synced", "total", res.Total)
	return res, nil
}

// Get returns a single player by stable ID.
func (s *Service) Get(ctx context.Context, id string) (*Player, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		s.log.Error("failed to load player", "error", err, "player_id", id)
		return nil, err
	}
	return p, nil
}

// List returns players matching the filter. The roster is small (one tryout
// batch), so filtering happens in memory over the full set.
func (s *Service) List(ctx context.Context, f Filter) ([]*Player, error) {
	players, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error(ErrListPlayers.Error(), "error", err)
		return nil, ErrListPlayers
	}

	var out []*Player
	for _, p := range players {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	return out, nil
}

// UpdateJersey sets the jersey number, the only mutable roster attribute.
func (s *Service) UpdateJersey(ctx context.Context, id, jersey string) (*Player, error) {
	p, err := s.repo.SetJersey(ctx, id, strings.TrimSpace(jersey))
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			s.log.Info("player not found for jersey update", "player_id", id)
			return nil, ErrPlayerNotFound
		}
		s.log.Error(ErrUpdateJersey.Error(), "error", err, "player_id", id)
		return nil, ErrUpdateJersey
	}
	return p, nil
}

func matches(p *Player, f Filter) bool {
	if f.Position != "" && !positionMatches(p.Position, f.Position) {
		return false
	}
	if f.School != "" && p.School != f.School {
		return false
	}
	if f.Search != "" && !searchMatches(p, f.Search) {
		return false
	}
	return true
}

// positionMatches checks the comma-separated position list token by token, so
// a "WR" filter matches "QB, WR" but a plain substring of another token does
// not have to.
func positionMatches(positions, want string) bool {
	for _, pos := range strings.Split(positions, ",") {
		pos = strings.TrimSpace(pos)
		if pos == want || strings.Contains(pos, want) {
			return true
		}
	}
	return false
}

// searchMatches checks first name, last name, and jersey number.
func searchMatches(p *Player, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.FirstName), term) ||
		strings.Contains(strings.ToLower(p.LastName), term) ||
		(p.Jersey != "" && strings.Contains(p.Jersey, term))
}
