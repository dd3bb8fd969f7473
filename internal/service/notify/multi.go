package notify

import (
	"context"
	"errors"
	"fmt"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/domain/repository"
	"FinNotify/pkg/logger"
	"FinNotify/pkg/metrics"
)

var _ repository.Notifier = (*Multi)(nil)

// Multi fans one notification out to every sink in order.
// A failing sink never stops the others.
type Multi struct {
	sinks   []repository.Notifier
	metrics repository.Metrics
	log     *logger.Logger
}

func NewMulti(l *logger.Logger, m repository.Metrics, sinks ...repository.Notifier) *Multi {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Multi{sinks: sinks, metrics: m, log: l}
}

func (m *Multi) Name() string { return "multi" }

// Notify returns the joined sink errors, nil when every sink succeeded.
func (m *Multi) Notify(ctx context.Context, req models.NotificationRequest) error {
	var errs []error
	for _, s := range m.sinks {
		err := s.Notify(ctx, req)
		m.metrics.RecordNotification(s.Name(), req.Kind, err)
		if err != nil {
			m.log.Error("notification sink failed",
				logger.String("sink", s.Name()),
				logger.String("symbol", req.Symbol),
				logger.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		m.log.Debug("notification delivered",
			logger.String("sink", s.Name()),
			logger.String("id", req.ID),
		)
	}
	return errors.Join(errs...)
}
