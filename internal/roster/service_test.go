package roster

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// MockRosterRepo is a mock implementation of Repository
type MockRosterRepo struct {
	mock.Mock
}

func (m *MockRosterRepo) Upsert(ctx context.Context, p *Player) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRosterRepo) Get(ctx context.Context, id string) (*Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Player), args.Error(1)
}

func (m *MockRosterRepo) List(ctx context.Context) ([]*Player, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Player), args.Error(1)
}

func (m *MockRosterRepo) SetJersey(ctx context.Context, id, jersey string) (*Player, error) {
	args := m.Called(ctx, id, jersey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Player), args.Error(1)
}

func testPlayers() []*Player {
	return []*Player{
		{ID: "jordan-miles-2012-04-09", FirstName: "Jordan", LastName: "Miles", School: "Lincoln Elementary", Position: "QB, WR", Jersey: "7"},
		{ID: "sam-okafor-2011-11-30", FirstName: "Sam", LastName: "Okafor", School: "Washington Middle", Position: "RB"},
		{ID: "ava-reyes-2011-12-01", FirstName: "Ava", LastName: "Reyes", School: "Lincoln Elementary", Position: "WR", Jersey: "22"},
	}
}

func TestServiceList(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{
			name:    "no filter returns everyone",
			filter:  Filter{},
			wantIDs: []string{"jordan-miles-2012-04-09", "sam-okafor-2011-11-30", "ava-reyes-2011-12-01"},
		},
		{
			name:    "position matches any comma-separated token",
			filter:  Filter{Position: "WR"},
			wantIDs: []string{"jordan-miles-2012-04-09", "ava-reyes-2011-12-01"},
		},
		{
			name:    "school is an exact match",
			filter:  Filter{School: "Washington Middle"},
			wantIDs: []string{"sam-okafor-2011-11-30"},
		},
		{
			name:    "search matches names case-insensitively",
			filter:  Filter{Search: "okaf"},
			wantIDs: []string{"sam-okafor-2011-11-30"},
		},
		{
			name:    "search matches jersey number",
			filter:  Filter{Search: "22"},
			wantIDs: []string{"ava-reyes-2011-12-01"},
		},
		{
			name:    "combined filters intersect",
			filter:  Filter{Position: "WR", School: "Lincoln Elementary", Search: "ava"},
			wantIDs: []string{"ava-reyes-2011-12-01"},
		},
		{
			name:   "no match",
			filter: Filter{Position: "K"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRosterRepo{}
			repo.On("List", mock.Anything).Return(testPlayers(), nil)
			svc := NewService(repo, silentLogger)

			got, err := svc.List(context.Background(), tt.filter)
			require.NoError(t, err)

			var ids []string
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestServiceListRepoError(t *testing.T) {
	repo := &MockRosterRepo{}
	repo.On("List", mock.Anything).Return(nil, errors.New("db down"))
	svc := NewService(repo, silentLogger)

	_, err := svc.List(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrListPlayers)
}

func TestServiceSync(t *testing.T) {
	repo := &MockRosterRepo{}
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*roster.Player")).Return(nil)
	svc := NewService(repo, silentLogger)

	res, err := svc.Sync(context.Background(), testPlayers())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Success)
	repo.AssertNumberOfCalls(t, "Upsert", 3)
}

func TestServiceSyncStopsOnError(t *testing.T) {
	players := testPlayers()
	repo := &MockRosterRepo{}
	repo.On("Upsert", mock.Anything, players[0]).Return(nil).Once()
	repo.On("Upsert", mock.Anything, players[1]).Return(errors.New("write failed")).Once()
	svc := NewService(repo, silentLogger)

	res, err := svc.Sync(context.Background(), players)
	assert.ErrorIs(t, err, ErrSyncRoster)
	assert.Equal(t, 1, res.Success)
}

func TestServiceUpdateJersey(t *testing.T) {
	repo := &MockRosterRepo{}
	updated := &Player{ID: "p1", Jersey: "11"}
	repo.On("SetJersey", mock.Anything, "p1", "11").Return(updated, nil)
	svc := NewService(repo, silentLogger)

	p, err := svc.UpdateJersey(context.Background(), "p1", " 11 ")
	require.NoError(t, err)
	assert.Equal(t, "11", p.Jersey)
}

func TestServiceUpdateJerseyNotFound(t *testing.T) {
	repo := &MockRosterRepo{}
	repo.On("SetJersey", mock.Anything, "ghost", "9").Return(nil, ErrPlayerNotFound)
	svc := NewService(repo, silentLogger)

	_, err := svc.UpdateJersey(context.Background(), "ghost", "9")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
