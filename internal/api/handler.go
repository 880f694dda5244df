package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
	"github.com/arian-lol/msg-mirror/internal/biz/usecase"
	"github.com/arian-lol/msg-mirror/internal/metrics"
	"github.com/arian-lol/msg-mirror/internal/service"
)

// prefKeys lists the preferences exposed by GET /api/prefs
var prefKeys = []string{
	domain.PrefEndpoint,
	domain.PrefPayloadTemplate,
	domain.PrefReception,
	domain.PrefSmsEnabled,
	domain.PrefAllowedPackages,
	domain.PrefServiceRunning,
}

// Server is the host-adapter and admin HTTP API
type Server struct {
	listener *usecase.CaptureListener
	prefsUC  *usecase.PrefsUsecase
	smsRepo  repo.SmsRepo
	logRepo  repo.LogRepo
	relay    *service.RelayService
	ws       http.HandlerFunc

	server *http.Server
	addr   string
}

// NewServer creates a new API server. ws serves the live channel and may be nil.
func NewServer(
	listener *usecase.CaptureListener,
	prefsUC *usecase.PrefsUsecase,
	smsRepo repo.SmsRepo,
	logRepo repo.LogRepo,
	relay *service.RelayService,
	ws http.HandlerFunc,
	addr string,
) *Server {
	s := &Server{
		listener: listener,
		prefsUC:  prefsUC,
		smsRepo:  smsRepo,
		logRepo:  logRepo,
		relay:    relay,
		ws:       ws,
		addr:     addr,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	// Host adapter: capture input
	r.HandleFunc("/api/notifications", s.handleNotificationPosted).Methods(http.MethodPost)
	r.HandleFunc("/api/notifications/removed", s.handleNotificationRemoved).Methods(http.MethodPost)
	r.HandleFunc("/api/listener/{state}", s.handleListenerState).Methods(http.MethodPost)
	r.HandleFunc("/api/sms", s.handleSms).Methods(http.MethodPost)

	// Log channel
	r.HandleFunc("/api/logs", s.handleLogRead).Methods(http.MethodGet)
	r.HandleFunc("/api/logs", s.handleLogAppend).Methods(http.MethodPost)
	r.HandleFunc("/api/logs", s.handleLogClear).Methods(http.MethodDelete)

	// Preference channel
	r.HandleFunc("/api/prefs", s.handlePrefsList).Methods(http.MethodGet)
	r.HandleFunc("/api/prefs/{key}", s.handlePrefGet).Methods(http.MethodGet)
	r.HandleFunc("/api/prefs/{key}", s.handlePrefSet).Methods(http.MethodPut)

	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)

	if s.ws != nil {
		r.HandleFunc("/ws", s.ws).Methods(http.MethodGet)
	}

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}

// Start starts the HTTP server. After Stop it returns http.ErrServerClosed.
func (s *Server) Start() error {
	fmt.Printf("[API] Starting HTTP server on %s\n", s.addr)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ============ Capture Handlers ============

func (s *Server) handleNotificationPosted(w http.ResponseWriter, r *http.Request) {
	var raw domain.RawNotification
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if raw.PackageName == "" {
		http.Error(w, "package_name is required", http.StatusBadRequest)
		return
	}

	// The capture must not depend on the client staying connected
	record := s.listener.OnNotificationPosted(context.WithoutCancel(r.Context()), &raw)
	s.writeJSONStatus(w, http.StatusAccepted, map[string]interface{}{"routed": record != nil})
}

func (s *Server) handleNotificationRemoved(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PackageName string `json:"package_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.listener.OnNotificationRemoved(req.PackageName)
	s.writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleListenerState(w http.ResponseWriter, r *http.Request) {
	switch mux.Vars(r)["state"] {
	case "connected":
		s.listener.OnListenerConnected()
	case "disconnected":
		s.listener.OnListenerDisconnected()
	default:
		http.Error(w, "state must be connected or disconnected", http.StatusBadRequest)
		return
	}
	s.writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleSms(w http.ResponseWriter, r *http.Request) {
	var msg domain.SmsMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg.From == "" || msg.Body == "" {
		http.Error(w, "from and body are required", http.StatusBadRequest)
		return
	}
	if msg.Date <= 0 {
		msg.Date = time.Now().UnixMilli()
	}

	if err := s.smsRepo.Insert(r.Context(), &msg); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSONStatus(w, http.StatusCreated, map[string]bool{"success": true})
}

// ============ Log Handlers ============

func (s *Server) handleLogRead(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"content": s.logRepo.Read()})
}

func (s *Server) handleLogAppend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Line string `json:"line"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logRepo.Append(req.Line)
	s.writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleLogClear(w http.ResponseWriter, r *http.Request) {
	s.logRepo.Clear()
	s.writeJSON(w, map[string]bool{"success": true})
}

// ============ Preference Handlers ============

func (s *Server) handlePrefsList(w http.ResponseWriter, r *http.Request) {
	prefs := make(map[string]interface{}, len(prefKeys))
	for _, key := range prefKeys {
		v, err := s.prefsUC.Get(r.Context(), key)
		if err != nil {
			s.writeError(w, err)
			return
		}
		prefs[key] = v
	}
	s.writeJSON(w, map[string]interface{}{"prefs": prefs})
}

func (s *Server) handlePrefGet(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	v, err := s.prefsUC.Get(r.Context(), key)
	if err != nil {
		s.writePrefError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"key": key, "value": v})
}

func (s *Server) handlePrefSet(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	var req struct {
		Value interface{} `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// sms_enabled also re-evaluates the observer registration
	if key == domain.PrefSmsEnabled && s.relay != nil {
		enabled, ok := req.Value.(bool)
		if !ok {
			s.writePrefError(w, fmt.Errorf("%w: %s wants bool", usecase.ErrPrefType, key))
			return
		}
		if err := s.relay.ToggleSms(r.Context(), enabled); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]bool{"success": true})
		return
	}

	if err := s.prefsUC.Set(r.Context(), key, req.Value); err != nil {
		s.writePrefError(w, err)
		return
	}
	s.writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.relay == nil {
		s.writeJSON(w, service.Status{})
		return
	}
	s.writeJSON(w, s.relay.Status())
}

// ============ Helpers ============

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) writePrefError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrUnknownPref):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrPrefType):
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
