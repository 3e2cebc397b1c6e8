package audit

import (
	"context"
	"fmt"

	"github.com/kstrand/punchclock/internal/clock"
)

// Service handles audit log operations.
type Service struct {
	repo  Repository
	clock clock.Clock
}

// NewService creates a new audit service.
func NewService(repo Repository, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{repo: repo, clock: clk}
}

// Record logs an audit entry, stamping it with the current time if missing.
func (s *Service) Record(ctx context.Context, orgID string, entry *Entry) error {
	if entry == nil {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now()
	}
	if err := s.repo.Log(ctx, orgID, entry); err != nil {
		return fmt.Errorf("recording audit entry: %w", err)
	}
	return nil
}

// Recent lists audit entries for an org with filtering.
func (s *Service) Recent(ctx context.Context, orgID string, opts ListOptions) ([]Entry, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	return s.repo.List(ctx, orgID, opts)
}
