package usecase

import (
	"context"
	"time"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
	"github.com/arian-lol/msg-mirror/internal/metrics"
)

const smsQueryTimeout = 5 * time.Second

// SmsObserver forwards the newest inbound SMS to the live consumer on every
// change of the inbox. It never buffers and never falls back to HTTP.
type SmsObserver struct {
	smsRepo repo.SmsRepo
	router  *Router
	log     repo.LogRepo
}

// NewSmsObserver creates a new SMS observer
func NewSmsObserver(smsRepo repo.SmsRepo, router *Router, log repo.LogRepo) *SmsObserver {
	return &SmsObserver{
		smsRepo: smsRepo,
		router:  router,
		log:     log,
	}
}

// OnChange implements repo.ContentObserver
func (o *SmsObserver) OnChange(uri string) {
	logf(o.log, "SmsObserver onChange uri=%s", uri)

	ctx, cancel := context.WithTimeout(context.Background(), smsQueryTimeout)
	defer cancel()

	msg := orDefault(o.log, "SmsObserver query", (*domain.SmsMessage)(nil), func() (*domain.SmsMessage, error) {
		return o.smsRepo.LatestInbound(ctx)
	})
	if msg == nil {
		return
	}

	if !o.router.DeliverLive(domain.MethodOnSms, msg.ToMap()) {
		logf(o.log, "SmsObserver: no channel available")
		return
	}
	metrics.SmsForwarded.Inc()
	logf(o.log, "SmsObserver -> %s", msg.From)
}
