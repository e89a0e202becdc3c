package server

import (
	"context"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/config"
	"gallery-delivery-api/internal/curation"
)

// NewCurationAPI builds the VIP curation API without touching any backend.
// Routing, preflight and health answer even when the container cannot be
// built; only an enabled journal resolves the warm container, on first record.
func NewCurationAPI(cfg *config.Config, cm *ConnectionManager) *curation.API {
	logger := logrus.StandardLogger()
	if cfg != nil {
		logger = config.NewLogger(cfg)
	}

	var journal curation.Journal = curation.NopJournal{}
	if cfg != nil && cfg.Curation.Journal && cm != nil {
		journal = containerJournal{cm: cm}
	}
	return curation.NewAPI(curation.WithJournal(journal), curation.WithLogger(logger))
}

// containerJournal records through the journal of the warm container
type containerJournal struct {
	cm *ConnectionManager
}

func (j containerJournal) Record(ctx context.Context, effect curation.Effect) error {
	c, err := j.cm.GetContainer(ctx)
	if err != nil {
		return err
	}
	return c.journal().Record(ctx, effect)
}
