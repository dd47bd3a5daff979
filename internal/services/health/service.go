package health

import (
	"context"
	"database/sql"
	"time"

	"resume-builder/internal/shared/storage/db"
)

// Service encapsulates health-related checks.
type Service struct {
	DB      *sql.DB
	Gateway string
	Timeout time.Duration
}

// NewService constructs a health service. db may be nil for gateways
// without a database.
func NewService(db *sql.DB, gateway string) *Service {
	return &Service{DB: db, Gateway: gateway, Timeout: 2 * time.Second}
}

// Status reports liveness and, when a database is attached, whether it
// answers a ping.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	out := map[string]any{"ok": true, "gateway": s.Gateway}
	if s.DB == nil {
		return out, true
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		out["ok"] = false
		out["database"] = err.Error()
		return out, false
	}
	out["database"] = "ok"
	out["pool"] = db.PoolStats(s.DB)
	return out, true
}
