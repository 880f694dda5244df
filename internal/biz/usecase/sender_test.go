package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
)

func TestBuildPayload_Template(t *testing.T) {
	data := buildPayload(`{"msg":"{{body}}","who":"{{from}}"}`, "Bob", "hi", "2024-01-02 03:04", "")

	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Payload is not JSON: %v", err)
	}
	if len(got) != 2 || got["msg"] != "hi" || got["who"] != "Bob" {
		t.Errorf("Unexpected payload: %v", got)
	}
}

func TestBuildPayload_AllPlaceholders(t *testing.T) {
	tmpl := `{"b":"{{body}}","f":"{{from}}","d":"{{date}}","a":"{{app}}","t":"{{type}}","r":"{{reception}}"}`
	data := buildPayload(tmpl, "Bob", "hi", "2024-01-02 03:04", "home")

	expected := `{"b":"hi","f":"Bob","d":"2024-01-02 03:04","a":"notification","t":"notification","r":"home"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}

func TestBuildPayload_FallsBackToDefaultShape(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{"no template", ""},
		{"blank template", "   "},
		{"broken json", `{"msg":"{{body}}"`},
		{"not an object", `["{{body}}"]`},
		{"quote in body breaks template", `{"msg":"{{from}}"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildPayload(tt.template, `Bob "B"`, "hi", "2024-01-02 03:04", "")

			var got defaultPayload
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Payload is not JSON: %v", err)
			}
			expected := defaultPayload{MessageBody: "hi", MessageFrom: `Bob "B"`, MessageDate: "2024-01-02 03:04", Type: "notification"}
			if got != expected {
				t.Errorf("Expected %+v, got %+v", expected, got)
			}
		})
	}
}

func TestApiSender_SkipsWithoutEndpointOrBody(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	ctx := context.Background()
	prefs := newMockPrefsRepo()
	log := &memLog{}
	s := NewApiSender(prefs, log)

	if _, _, ok := s.prepare(ctx, "Bob", "hi", 1); ok {
		t.Error("Expected skip with empty endpoint")
	}

	_ = prefs.SetString(ctx, domain.PrefEndpoint, server.URL)
	if _, _, ok := s.prepare(ctx, "Bob", "", 1); ok {
		t.Error("Expected skip with empty body")
	}

	s.Send("Bob", "", 1)
	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("Expected zero network calls, got %d", hits)
	}
	if !log.contains("ApiSender skip: endpoint/body empty") {
		t.Error("Expected skip logged")
	}
}

func TestApiSender_DefaultTimestamp(t *testing.T) {
	ctx := context.Background()
	prefs := newMockPrefsRepo()
	_ = prefs.SetString(ctx, domain.PrefEndpoint, "http://127.0.0.1:1")
	s := NewApiSender(prefs, &memLog{})
	s.now = func() time.Time { return time.Date(2024, 3, 9, 8, 7, 0, 0, time.Local) }

	_, payload, ok := s.prepare(ctx, "Bob", "hi", 0)
	if !ok {
		t.Fatal("Expected send prepared")
	}
	var got defaultPayload
	_ = json.Unmarshal(payload, &got)
	if got.MessageDate != "2024-03-09 08:07" {
		t.Errorf("Expected current time, got %s", got.MessageDate)
	}
}

func TestApiSender_ReceptionFromPrefs(t *testing.T) {
	ctx := context.Background()
	prefs := newMockPrefsRepo()
	_ = prefs.SetString(ctx, domain.PrefEndpoint, "http://127.0.0.1:1")
	_ = prefs.SetString(ctx, domain.PrefPayloadTemplate, `{"r":"{{reception}}"}`)
	_ = prefs.SetString(ctx, domain.PrefReception, "office")
	s := NewApiSender(prefs, &memLog{})

	_, payload, _ := s.prepare(ctx, "Bob", "hi", 1)
	if string(payload) != `{"r":"office"}` {
		t.Errorf("Unexpected payload: %s", payload)
	}
}

func TestApiSender_PostsJSON(t *testing.T) {
	type received struct {
		contentType string
		body        []byte
	}
	got := make(chan received, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{contentType: r.Header.Get("Content-Type"), body: body}
		w.Write([]byte("accepted"))
	}))
	defer server.Close()

	ctx := context.Background()
	prefs := newMockPrefsRepo()
	_ = prefs.SetString(ctx, domain.PrefEndpoint, server.URL)
	_ = prefs.SetString(ctx, domain.PrefPayloadTemplate, `{"msg":"{{body}}","who":"{{from}}"}`)
	log := &memLog{}
	s := NewApiSender(prefs, log)

	s.Send("Bob", "hi", time.Now().UnixMilli())

	select {
	case r := <-got:
		if r.contentType != "application/json" {
			t.Errorf("Expected application/json, got %s", r.contentType)
		}
		if string(r.body) != `{"msg":"hi","who":"Bob"}` {
			t.Errorf("Unexpected body: %s", r.body)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Endpoint was not called")
	}

	deadline := time.Now().Add(2 * time.Second)
	for !log.contains("ApiSender ← status=200 len=8") {
		if time.Now().After(deadline) {
			t.Fatalf("Expected response logged, got %q", log.Read())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestApiSender_NetworkErrorIsLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	ctx := context.Background()
	prefs := newMockPrefsRepo()
	_ = prefs.SetString(ctx, domain.PrefEndpoint, url)
	log := &memLog{}
	s := NewApiSender(prefs, log)

	s.Send("Bob", "hi", 1)

	deadline := time.Now().Add(5 * time.Second)
	for !log.contains("ApiSender error:") {
		if time.Now().After(deadline) {
			t.Fatalf("Expected error logged, got %q", log.Read())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestApiSender_StalledBodyTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx := context.Background()
	prefs := newMockPrefsRepo()
	_ = prefs.SetString(ctx, domain.PrefEndpoint, server.URL)
	log := &memLog{}
	s := NewApiSender(prefs, log)
	s.postTimeout = 200 * time.Millisecond

	s.Send("Bob", "hi", 1)

	deadline := time.Now().Add(5 * time.Second)
	for !log.contains("ApiSender error:") {
		if time.Now().After(deadline) {
			t.Fatalf("Expected stalled body to time out, got %q", log.Read())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if log.contains("ApiSender ← status=") {
		t.Errorf("Expected no status line for a truncated response, got %q", log.Read())
	}
}
