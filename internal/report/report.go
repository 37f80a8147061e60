// Package report mails a scheduled activity digest to the ops address.
package report

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"todoservice/internal/config"
	"todoservice/internal/mail"
	"todoservice/internal/repository"
)

// Digest runs the scheduled ops digest. It only ever reads aggregate
// counts from the store.
type Digest struct {
	cfg    *config.Config
	repo   *repository.Repository
	sender *mail.Sender
	logger *logrus.Logger
	cron   *cron.Cron
}

// NewDigest creates the digest job; call Start to schedule it.
func NewDigest(cfg *config.Config, repo *repository.Repository, sender *mail.Sender, logger *logrus.Logger) *Digest {
	return &Digest{
		cfg:    cfg,
		repo:   repo,
		sender: sender,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start schedules the digest per the configured cron expression.
func (d *Digest) Start() error {
	if _, err := d.cron.AddFunc(d.cfg.DigestSchedule, d.run); err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}
	d.cron.Start()
	d.logger.Infof("Ops digest scheduled: %s", d.cfg.DigestSchedule)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (d *Digest) Stop() {
	<-d.cron.Stop().Done()
}

func (d *Digest) run() {
	stats, err := d.repo.CollectStats()
	if err != nil {
		d.logger.Errorf("Failed to collect digest stats: %v", err)
		return
	}

	body := fmt.Sprintf(
		"Todo service digest for %s\n\n"+
			"Registered users: %d\n"+
			"Todos: %d\n"+
			"Completed todos: %d\n",
		time.Now().Format("2006-01-02"),
		stats.Users, stats.Todos, stats.CompletedTodos,
	)
	if err := d.sender.Send(d.cfg.OpsEmail, "Todo service daily digest", body); err != nil {
		d.logger.Errorf("Failed to send digest: %v", err)
	}
}
