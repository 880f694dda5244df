package usecase

import (
	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
)

// NotifEventReceiver consumes notification broadcasts and forwards a short
// form of each to the live consumer
type NotifEventReceiver struct {
	router *Router
	log    repo.LogRepo
}

// NewNotifEventReceiver creates a new broadcast receiver
func NewNotifEventReceiver(router *Router, log repo.LogRepo) *NotifEventReceiver {
	return &NotifEventReceiver{router: router, log: log}
}

// OnReceive handles one broadcast intent. Foreign actions are ignored.
func (r *NotifEventReceiver) OnReceive(intent domain.Intent) {
	if intent.Action != domain.ActionNotifEvent {
		return
	}

	data := map[string]interface{}{
		"app":            intent.StringExtra("app"),
		"title":          intent.StringExtra("title"),
		"text":           intent.StringExtra("text"),
		"when":           intent.LongExtra("when", 0),
		"isGroupSummary": intent.BoolExtra("isGroupSummary", false),
	}
	logf(r.log, "NotifEventReceiver -> %s", data["title"])

	if !r.router.DeliverLive(domain.MethodOnNotification, data) {
		logf(r.log, "NotifEventReceiver: no channel available")
	}
}
