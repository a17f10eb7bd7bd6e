package roster

import "context"

// Repository defines the interface for roster persistence operations
type Repository interface {
	Upsert(ctx context.Context, p *Player) error
	Get(ctx context.Context, id string) (*Player, error)
	List(ctx context.Context) ([]*Player, error)
	SetJersey(ctx context.Context, id, jersey string) (*Player, error)
}
