// Package jobs runs the periodic background refreshers: the 30-second
// unread-count poll and a slower wallet reconciliation. Push events cover
// the fast path; these polls catch anything a missed event left stale.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"pulasa-client/internal/auth"
	"pulasa-client/services"
	"pulasa-client/utils"
)

type Runner struct {
	cron    *cron.Cron
	session *auth.Session
	log     *logrus.Entry
}

func NewRunner(session *auth.Session, notifications *services.NotificationService, wallet *services.WalletService, notificationPoll, walletPoll time.Duration) *Runner {
	r := &Runner{
		cron:    cron.New(),
		session: session,
		log:     utils.Component("jobs"),
	}
	if notificationPoll <= 0 {
		notificationPoll = 30 * time.Second
	}
	if walletPoll <= 0 {
		walletPoll = 2 * time.Minute
	}

	r.cron.AddFunc(fmt.Sprintf("@every %s", notificationPoll), func() {
		if !r.session.IsAuthenticated() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := notifications.RefreshCount(ctx); err != nil {
			r.log.WithError(err).Debug("notification count poll failed")
		}
	})

	r.cron.AddFunc(fmt.Sprintf("@every %s", walletPoll), func() {
		if !r.session.IsAuthenticated() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := wallet.Refresh(ctx); err != nil {
			r.log.WithError(err).Debug("wallet poll failed")
		}
	})

	return r
}

func (r *Runner) Start() {
	r.cron.Start()
	r.log.Info("background refreshers started")
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
