package usecase

import (
	"context"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
)

// FilterUsecase decides which source applications may produce events
type FilterUsecase struct {
	prefsRepo repo.PrefsRepo
	log       repo.LogRepo
}

// NewFilterUsecase creates a new filter usecase
func NewFilterUsecase(prefsRepo repo.PrefsRepo, log repo.LogRepo) *FilterUsecase {
	return &FilterUsecase{
		prefsRepo: prefsRepo,
		log:       log,
	}
}

// AllowedPackages reads the allow-list from the preference store.
// It is read on every call so edits take effect on the next event.
func (uc *FilterUsecase) AllowedPackages(ctx context.Context) []string {
	return orDefault(uc.log, "read allowed_packages", domain.DefaultAllowedPackages(), func() ([]string, error) {
		return uc.prefsRepo.GetStringSet(ctx, domain.PrefAllowedPackages, domain.DefaultAllowedPackages())
	})
}

// Allowed reports whether events from pkg pass the filter.
// An empty allow-list allows everything.
func (uc *FilterUsecase) Allowed(ctx context.Context, pkg string) bool {
	allowed := uc.AllowedPackages(ctx)
	if len(allowed) == 0 {
		return true
	}
	for _, p := range allowed {
		if p == pkg {
			return true
		}
	}
	return false
}
