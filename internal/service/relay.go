package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
	"github.com/arian-lol/msg-mirror/internal/biz/usecase"
)

// IntentReceiver is a background broadcast consumer
type IntentReceiver interface {
	Start(ctx context.Context)
	Stop()
}

// StaticPermissions answers permission checks from configuration
type StaticPermissions struct {
	ReadSms bool
}

// HasReadSms implements repo.PermissionChecker
func (p StaticPermissions) HasReadSms() bool {
	return p.ReadSms
}

// RelayService keeps the relay alive: it owns the SMS observer registration,
// the broadcast receiver and the service_running flag
type RelayService struct {
	prefsRepo repo.PrefsRepo
	smsRepo   repo.SmsRepo
	perms     repo.PermissionChecker
	router    *usecase.Router
	receiver  IntentReceiver
	log       repo.LogRepo

	mu       sync.Mutex
	running  bool
	observer *usecase.SmsObserver
}

// Status is a point-in-time view of the relay
type Status struct {
	Running          bool `json:"running"`
	ConsumerAttached bool `json:"consumer_attached"`
	Pending          int  `json:"pending"`
	SmsObserver      bool `json:"sms_observer"`
}

// NewRelayService creates a new relay service. receiver may be nil.
func NewRelayService(
	prefsRepo repo.PrefsRepo,
	smsRepo repo.SmsRepo,
	perms repo.PermissionChecker,
	router *usecase.Router,
	receiver IntentReceiver,
	log repo.LogRepo,
) *RelayService {
	return &RelayService{
		prefsRepo: prefsRepo,
		smsRepo:   smsRepo,
		perms:     perms,
		router:    router,
		receiver:  receiver,
		log:       log,
	}
}

// Start brings the relay up. Calling it twice is a no-op.
func (s *RelayService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.log.Append("RelayService start")

	if err := s.prefsRepo.SetBool(ctx, domain.PrefServiceRunning, true); err != nil {
		s.log.Append(fmt.Sprintf("RelayService failed to set service_running: %v", err))
	}

	if s.receiver != nil {
		s.receiver.Start(context.Background())
	}

	s.syncObserverLocked(ctx)
	s.running = true

	fmt.Println("[Relay] Started")
	return nil
}

// Stop tears the relay down: the observer is unregistered, the consumer is
// cleared and in-flight sends are left to finish on their own
func (s *RelayService) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.log.Append("RelayService stop")

	if err := s.prefsRepo.SetBool(ctx, domain.PrefServiceRunning, false); err != nil {
		s.log.Append(fmt.Sprintf("RelayService failed to clear service_running: %v", err))
	}

	s.detachObserverLocked()
	s.router.RegisterConsumer(nil)

	if s.receiver != nil {
		s.receiver.Stop()
	}
	s.running = false

	fmt.Println("[Relay] Stopped")
}

// ToggleSms stores sms_enabled and re-evaluates the observer registration
func (s *RelayService) ToggleSms(ctx context.Context, enabled bool) error {
	if err := s.prefsRepo.SetBool(ctx, domain.PrefSmsEnabled, enabled); err != nil {
		return fmt.Errorf("failed to save sms_enabled: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.syncObserverLocked(ctx)
	}
	return nil
}

// Status reports the relay state
func (s *RelayService) Status() Status {
	s.mu.Lock()
	running := s.running
	observing := s.observer != nil
	s.mu.Unlock()

	return Status{
		Running:          running,
		ConsumerAttached: s.router.HasConsumer(),
		Pending:          s.router.PendingLen(),
		SmsObserver:      observing,
	}
}

// syncObserverLocked attaches the observer iff SMS capture is enabled and
// permitted, and detaches it otherwise. Caller holds mu.
func (s *RelayService) syncObserverLocked(ctx context.Context) {
	enabled, err := s.prefsRepo.GetBool(ctx, domain.PrefSmsEnabled, domain.DefaultSmsEnabled)
	if err != nil {
		s.log.Append(fmt.Sprintf("RelayService failed to read sms_enabled: %v", err))
	}
	hasPerm := s.perms != nil && s.perms.HasReadSms()

	if enabled && hasPerm {
		if s.observer == nil {
			s.observer = usecase.NewSmsObserver(s.smsRepo, s.router, s.log)
			s.smsRepo.RegisterObserver(s.observer)
			s.log.Append("SmsObserver registered")
		}
		return
	}

	if s.observer != nil {
		s.detachObserverLocked()
		return
	}
	s.log.Append(fmt.Sprintf("SmsObserver not registered (enabled=%t, hasPerm=%t)", enabled, hasPerm))
}

func (s *RelayService) detachObserverLocked() {
	if s.observer == nil {
		return
	}
	s.smsRepo.UnregisterObserver(s.observer)
	s.observer = nil
	s.log.Append("SmsObserver unregistered")
}
