package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
	"github.com/arian-lol/msg-mirror/internal/metrics"
)

const (
	connectTimeout  = 10 * time.Second
	readTimeout     = 15 * time.Second
	payloadDateFmt  = "2006-01-02 15:04"
	payloadTypeName = "notification"
)

// defaultPayload is the fixed payload shape used without a usable template
type defaultPayload struct {
	MessageBody string `json:"message_body"`
	MessageFrom string `json:"message_from"`
	MessageDate string `json:"message_date"`
	Type        string `json:"type"`
}

// ApiSender is the HTTP fallback sender.
// Each Send makes at most one POST attempt on its own goroutine; failures are
// only logged, never retried or reported to the caller.
type ApiSender struct {
	prefsRepo repo.PrefsRepo
	log       repo.LogRepo
	client    *http.Client
	now       func() time.Time

	// postTimeout bounds the whole attempt, response body included
	postTimeout time.Duration
}

// NewApiSender creates a new HTTP fallback sender
func NewApiSender(prefsRepo repo.PrefsRepo, log repo.LogRepo) *ApiSender {
	return &ApiSender{
		prefsRepo: prefsRepo,
		log:       log,
		client:    newFallbackClient(),
		now:       time.Now,

		postTimeout: connectTimeout + readTimeout,
	}
}

func newFallbackClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
			ResponseHeaderTimeout: readTimeout,
		},
	}
}

// Send schedules a POST of (from, body, timestampMs) to the configured endpoint
func (s *ApiSender) Send(from, body string, timestampMs int64) {
	endpoint, payload, ok := s.prepare(context.Background(), from, body, timestampMs)
	if !ok {
		return
	}
	go s.post(endpoint, from, body, payload)
}

// prepare reads the endpoint and template and renders the payload.
// ok is false when the send is skipped.
func (s *ApiSender) prepare(ctx context.Context, from, body string, timestampMs int64) (endpoint string, payload []byte, ok bool) {
	endpoint = orDefault(s.log, "read endpoint", "", func() (string, error) {
		return s.prefsRepo.GetString(ctx, domain.PrefEndpoint, "")
	})
	template := orDefault(s.log, "read payload_template", "", func() (string, error) {
		return s.prefsRepo.GetString(ctx, domain.PrefPayloadTemplate, "")
	})

	if endpoint == "" || body == "" {
		logf(s.log, "ApiSender skip: endpoint/body empty")
		metrics.FallbackSends.WithLabelValues(metrics.FallbackSkipped).Inc()
		return "", nil, false
	}

	ts := time.UnixMilli(timestampMs)
	if timestampMs <= 0 {
		ts = s.now()
	}
	date := ts.Format(payloadDateFmt)

	reception := ""
	if strings.Contains(template, "{{reception}}") {
		reception = orDefault(s.log, "read reception", "", func() (string, error) {
			return s.prefsRepo.GetString(ctx, domain.PrefReception, "")
		})
	}

	return endpoint, buildPayload(template, from, body, date, reception), true
}

// buildPayload renders template by literal placeholder substitution. A blank
// template, or one that does not render to a JSON object, yields the default shape.
func buildPayload(template, from, body, date, reception string) []byte {
	if strings.TrimSpace(template) != "" {
		rendered := strings.NewReplacer(
			"{{body}}", body,
			"{{from}}", from,
			"{{date}}", date,
			"{{app}}", payloadTypeName,
			"{{type}}", payloadTypeName,
			"{{reception}}", reception,
		).Replace(template)

		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(rendered), &obj); err == nil && obj != nil {
			var buf bytes.Buffer
			if err := json.Compact(&buf, []byte(rendered)); err == nil {
				return buf.Bytes()
			}
		}
	}

	data, _ := json.Marshal(defaultPayload{
		MessageBody: body,
		MessageFrom: from,
		MessageDate: date,
		Type:        payloadTypeName,
	})
	return data
}

// post performs the single delivery attempt
func (s *ApiSender) post(endpoint, from, body string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			logf(s.log, "ApiSender error: %v", r)
			metrics.FallbackSends.WithLabelValues(metrics.FallbackError).Inc()
		}
	}()

	logf(s.log, "ApiSender POST → %s from='%s' len=%d", endpoint, from, len(body))

	ctx, cancel := context.WithTimeout(context.Background(), s.postTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		s.fail(err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.fail(err)
		return
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		s.fail(fmt.Errorf("read response: %w", err))
		return
	}
	logf(s.log, "ApiSender ← status=%d len=%d", resp.StatusCode, n)
	metrics.FallbackSends.WithLabelValues(metrics.FallbackOK).Inc()
}

func (s *ApiSender) fail(err error) {
	logf(s.log, "ApiSender error: %v", fmt.Errorf("post failed: %w", err))
	metrics.FallbackSends.WithLabelValues(metrics.FallbackError).Inc()
}
