package usecase

import (
	"testing"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
)

func TestNotifEventReceiver_DeliversShortForm(t *testing.T) {
	router := NewRouter(nil, &memLog{})
	consumer := &recordingConsumer{}
	router.RegisterConsumer(consumer)
	log := &memLog{}
	r := NewNotifEventReceiver(router, log)

	record := domain.EventRecord{App: "pkg.a", Title: "t", Text: "x", SubText: "dropped", When: 7, IsGroupSummary: true}
	r.OnReceive(record.ToIntent())

	calls := consumer.snapshot()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 delivery, got %d", len(calls))
	}
	args := calls[0].args
	if len(args) != 5 {
		t.Errorf("Expected 5 fields, got %v", args)
	}
	if args["app"] != "pkg.a" || args["title"] != "t" || args["text"] != "x" || args["when"] != int64(7) || args["isGroupSummary"] != true {
		t.Errorf("Unexpected args: %v", args)
	}
	if !log.contains("NotifEventReceiver -> t") {
		t.Error("Expected receipt logged")
	}
}

func TestNotifEventReceiver_MissingExtrasDefault(t *testing.T) {
	router := NewRouter(nil, &memLog{})
	consumer := &recordingConsumer{}
	router.RegisterConsumer(consumer)

	NewNotifEventReceiver(router, &memLog{}).OnReceive(domain.Intent{Action: domain.ActionNotifEvent})

	args := consumer.snapshot()[0].args
	if args["app"] != "" || args["when"] != int64(0) || args["isGroupSummary"] != false {
		t.Errorf("Unexpected defaults: %v", args)
	}
}

func TestNotifEventReceiver_IgnoresForeignAction(t *testing.T) {
	router := NewRouter(nil, &memLog{})
	consumer := &recordingConsumer{}
	router.RegisterConsumer(consumer)
	log := &memLog{}

	NewNotifEventReceiver(router, log).OnReceive(domain.Intent{Action: "other.action"})

	if len(consumer.snapshot()) != 0 || log.Read() != "" {
		t.Error("Expected foreign action ignored")
	}
}

func TestNotifEventReceiver_NoChannel(t *testing.T) {
	router := NewRouter(nil, &memLog{})
	log := &memLog{}

	NewNotifEventReceiver(router, log).OnReceive(domain.Intent{Action: domain.ActionNotifEvent})

	if !log.contains("NotifEventReceiver: no channel available") {
		t.Error("Expected missing channel logged")
	}
	if router.PendingLen() != 0 {
		t.Error("Receiver must not buffer")
	}
}
