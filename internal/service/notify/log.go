package notify

import (
	"context"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/domain/repository"
	"FinNotify/pkg/logger"
)

var _ repository.Notifier = (*Log)(nil)

// Log writes notifications to the application log. Handy on headless hosts.
type Log struct {
	log *logger.Logger
}

func NewLog(l *logger.Logger) *Log { return &Log{log: l} }

func (s *Log) Name() string { return "log" }

func (s *Log) Notify(_ context.Context, req models.NotificationRequest) error {
	s.log.Info("notification",
		logger.String("id", req.ID),
		logger.String("kind", string(req.Kind)),
		logger.String("symbol", req.Symbol),
		logger.String("title", req.Title),
		logger.String("message", req.Message),
	)
	return nil
}
