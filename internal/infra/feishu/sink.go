package feishu

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
)

const (
	sinkQueueSize   = 256
	sinkSendTimeout = 15 * time.Second
)

// Poster is the part of Client the sink needs
type Poster interface {
	SendRichText(ctx context.Context, chatID, title string, lines []string) error
}

type post struct {
	title string
	lines []string
}

// Sink mirrors live channel invocations into a Feishu chat.
// Invoke only enqueues; a single worker posts in order.
type Sink struct {
	poster Poster
	chatID string

	queue  chan post
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewSink creates a sink posting into chatID and starts its worker
func NewSink(poster Poster, chatID string) *Sink {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sink{
		poster: poster,
		chatID: chatID,
		queue:  make(chan post, sinkQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

// ID identifies the sink in the channel hub
func (s *Sink) ID() string {
	return "feishu:" + s.chatID
}

// Invoke formats the invocation and queues it for posting
func (s *Sink) Invoke(method string, args map[string]interface{}) error {
	p, ok := format(method, args)
	if !ok {
		return nil
	}
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("feishu sink closed")
	default:
	}
	select {
	case s.queue <- p:
		return nil
	default:
		return fmt.Errorf("feishu sink queue full, dropped %s", method)
	}
}

// Close stops the worker; queued posts that were not sent yet are dropped
func (s *Sink) Close() error {
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
	return nil
}

func (s *Sink) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case p := <-s.queue:
			ctx, cancel := context.WithTimeout(s.ctx, sinkSendTimeout)
			if err := s.poster.SendRichText(ctx, s.chatID, p.title, p.lines); err != nil {
				fmt.Printf("[Feishu] Mirror post failed: %v\n", err)
			}
			cancel()
		}
	}
}

// format renders onNotification and onSms invocations; other methods are ignored
func format(method string, args map[string]interface{}) (post, bool) {
	switch method {
	case domain.MethodOnNotification:
		title := str(args["title"])
		if title == "" {
			title = str(args["app"])
		}
		lines := []string{str(args["text"])}
		if app := str(args["app"]); app != "" {
			lines = append(lines, "App: "+app)
		}
		if when := formatMillis(args["when"]); when != "" {
			lines = append(lines, "Time: "+when)
		}
		return post{title: title, lines: lines}, true
	case domain.MethodOnSms:
		lines := []string{str(args["body"])}
		if when := formatMillis(args["date"]); when != "" {
			lines = append(lines, "Time: "+when)
		}
		return post{title: "SMS from " + str(args["from"]), lines: lines}, true
	default:
		return post{}, false
	}
}

func str(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func formatMillis(v interface{}) string {
	var ms int64
	switch t := v.(type) {
	case int64:
		ms = t
	case int:
		ms = int64(t)
	case float64:
		ms = int64(t)
	}
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}
