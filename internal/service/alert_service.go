package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nplvision/sol-engine/internal/models"
	"github.com/nplvision/sol-engine/pkg/config"
)

// alertSource lists calculations near expiration together with their
// jurisdiction's region code.
type alertSource interface {
	ListAlertCandidates(ctx context.Context, withinDays int) ([]models.AlertCandidate, error)
}

// AlertService renders expiration alert lines for external notification
// channels. The engine formats; delivery (email/chat/SMS) is someone
// else's job.
type AlertService struct {
	source  alertSource
	cfg     config.AlertsConfig
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAlertService constructs the service.
func NewAlertService(source alertSource, cfg config.AlertsConfig, metrics *MetricsService, logger *zap.Logger) *AlertService {
	if cfg.CriticalDays <= 0 {
		cfg.CriticalDays = 30
	}
	if cfg.HighDays <= 0 {
		cfg.HighDays = 60
	}
	if cfg.MediumDays <= 0 {
		cfg.MediumDays = 90
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{source: source, cfg: cfg, metrics: metrics, logger: logger}
}

// CheckExpirationAlerts returns one formatted line per loan whose adjusted
// expiration is at most the medium threshold away. Already-expired loans
// are excluded: they are surfaced through the is_expired flag and the
// audit trail, not as countdown alerts.
func (s *AlertService) CheckExpirationAlerts(ctx context.Context) ([]string, error) {
	candidates, err := s.source.ListAlertCandidates(ctx, s.cfg.MediumDays)
	if err != nil {
		return nil, err
	}

	alerts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.DaysUntilExpiration < 0 {
			continue
		}
		level := s.levelFor(c.DaysUntilExpiration)
		alerts = append(alerts, fmt.Sprintf("%s: Loan %s (%s) expires in %d days",
			level, c.LoanID, c.StateCode, c.DaysUntilExpiration))
	}

	s.metrics.AlertsObserved(len(alerts))
	return alerts, nil
}

func (s *AlertService) levelFor(days int) string {
	switch {
	case days <= s.cfg.CriticalDays:
		return "CRITICAL"
	case days <= s.cfg.HighDays:
		return "HIGH"
	default:
		return "MEDIUM"
	}
}
