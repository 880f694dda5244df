package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
	"github.com/arian-lol/msg-mirror/internal/metrics"
)

// CaptureListener turns raw posted notifications into event records and routes them.
// Nothing it does can fail the caller: every fallible step degrades to a default.
type CaptureListener struct {
	filter      *FilterUsecase
	router      *Router
	broadcaster repo.Broadcaster
	log         repo.LogRepo
	now         func() time.Time
}

// NewCaptureListener creates a capture listener. broadcaster may be nil.
func NewCaptureListener(filter *FilterUsecase, router *Router, broadcaster repo.Broadcaster, log repo.LogRepo) *CaptureListener {
	return &CaptureListener{
		filter:      filter,
		router:      router,
		broadcaster: broadcaster,
		log:         log,
		now:         time.Now,
	}
}

// OnNotificationPosted handles one notification-posted event.
// It returns the routed record, or nil if the event was dropped.
func (l *CaptureListener) OnNotificationPosted(ctx context.Context, raw *domain.RawNotification) *domain.EventRecord {
	if raw == nil {
		return nil
	}
	metrics.NotificationsReceived.Inc()
	logf(l.log, "onNotificationPosted from %s", raw.PackageName)

	n := raw.Notification
	if n == nil {
		metrics.NotificationsSkipped.WithLabelValues(metrics.SkipEmpty).Inc()
		return nil
	}
	app := raw.PackageName

	if n.IsOngoing() {
		logf(l.log, "skip ongoing notification for %s", app)
		metrics.NotificationsSkipped.WithLabelValues(metrics.SkipOngoing).Inc()
		return nil
	}

	text := l.charSequence(n.Extras, domain.ExtraText)
	bigText := l.charSequence(n.Extras, domain.ExtraBigText)
	lines := orDefault(l.log, "extract "+domain.ExtraTextLines, []string(nil), func() ([]string, error) {
		return n.Extras.CharSequenceArray(domain.ExtraTextLines)
	})
	resolved := domain.ResolveText(text, bigText, lines)

	if !l.filter.Allowed(ctx, app) {
		logf(l.log, "skip package %s (not allowed)", app)
		metrics.NotificationsSkipped.WithLabelValues(metrics.SkipNotAllowed).Inc()
		return nil
	}

	record := l.buildRecord(raw, n, resolved, bigText)
	logf(l.log, "emit onNotification: title='%s' textLen=%d", record.Title, len(record.Text))

	// The two delivery paths are independent; neither can suppress the other
	if l.broadcaster != nil {
		safely(l.log, "broadcast", func() error {
			return l.broadcaster.Broadcast(record.ToIntent())
		})
	}
	l.router.Route(record)

	return &record
}

func (l *CaptureListener) buildRecord(raw *domain.RawNotification, n *domain.Notification, text, bigText string) domain.EventRecord {
	when := raw.PostTime
	if when < 0 {
		when = l.now().UnixMilli()
	}

	people := orDefault(l.log, "extract "+domain.ExtraPeopleList, []string(nil), func() ([]string, error) {
		return n.Extras.People(domain.ExtraPeopleList)
	})

	actions := make([]string, 0, len(n.Actions))
	for _, a := range n.Actions {
		actions = append(actions, a.Title)
	}

	return domain.EventRecord{
		App:            raw.PackageName,
		Title:          l.charSequence(n.Extras, domain.ExtraTitle),
		Text:           text,
		SubText:        l.charSequence(n.Extras, domain.ExtraSubText),
		SummaryText:    l.charSequence(n.Extras, domain.ExtraSummaryText),
		BigText:        bigText,
		InfoText:       l.charSequence(n.Extras, domain.ExtraInfoText),
		Category:       n.Category,
		ChannelID:      n.ChannelID,
		GroupKey:       l.charSequence(n.Extras, domain.ExtraGroupKey),
		Color:          formatColor(n.Color),
		Visibility:     n.Visibility,
		Priority:       n.Priority,
		BadgeIconType:  n.BadgeIconType,
		People:         strings.Join(people, ","),
		Actions:        strings.Join(actions, "|"),
		LargeIcon:      l.bitmapBase64(n.Extras, domain.ExtraLargeIcon),
		Picture:        l.bitmapBase64(n.Extras, domain.ExtraPicture),
		When:           when,
		IsGroupSummary: n.IsGroupSummary(),
	}
}

func (l *CaptureListener) charSequence(extras domain.Extras, key string) string {
	return orDefault(l.log, "extract "+key, "", func() (string, error) {
		return extras.CharSequence(key)
	})
}

// bitmapBase64 re-encodes the image under key as base64 PNG, or "" if absent or broken
func (l *CaptureListener) bitmapBase64(extras domain.Extras, key string) string {
	return orDefault(l.log, "extract "+key, "", func() (string, error) {
		img, err := extras.Bitmap(key)
		if err != nil || img == nil {
			return "", err
		}
		return encodePNGBase64(img)
	})
}

func encodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// formatColor renders an ARGB color int as #AARRGGBB
func formatColor(c int) string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// OnNotificationRemoved is only traced
func (l *CaptureListener) OnNotificationRemoved(pkg string) {
	logf(l.log, "onNotificationRemoved from %s", pkg)
}

// OnListenerConnected is only traced
func (l *CaptureListener) OnListenerConnected() {
	logf(l.log, "MsgListener onListenerConnected")
}

// OnListenerDisconnected is only traced
func (l *CaptureListener) OnListenerDisconnected() {
	logf(l.log, "MsgListener onListenerDisconnected")
}
