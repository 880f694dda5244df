package biz

import (
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
	"github.com/arian-lol/msg-mirror/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Sender   *usecase.ApiSender
	Router   *usecase.Router
	Filter   *usecase.FilterUsecase
	Capture  *usecase.CaptureListener
	Receiver *usecase.NotifEventReceiver
	Prefs    *usecase.PrefsUsecase
}

// NewUsecases wires the capture pipeline. broadcaster may be nil.
func NewUsecases(prefsRepo repo.PrefsRepo, logRepo repo.LogRepo, broadcaster repo.Broadcaster) *Usecases {
	sender := usecase.NewApiSender(prefsRepo, logRepo)
	router := usecase.NewRouter(sender, logRepo)
	filter := usecase.NewFilterUsecase(prefsRepo, logRepo)

	return &Usecases{
		Sender:   sender,
		Router:   router,
		Filter:   filter,
		Capture:  usecase.NewCaptureListener(filter, router, broadcaster, logRepo),
		Receiver: usecase.NewNotifEventReceiver(router, logRepo),
		Prefs:    usecase.NewPrefsUsecase(prefsRepo),
	}
}
