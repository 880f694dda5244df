package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
)

var (
	ErrUnknownPref = errors.New("unknown preference")
	ErrPrefType    = errors.New("invalid preference value type")
)

// PrefsUsecase is the typed preference channel used by the API and tool surfaces
type PrefsUsecase struct {
	prefsRepo repo.PrefsRepo
}

// NewPrefsUsecase creates a new preference usecase
func NewPrefsUsecase(prefsRepo repo.PrefsRepo) *PrefsUsecase {
	return &PrefsUsecase{prefsRepo: prefsRepo}
}

// Get returns the typed value of key, applying the documented default
func (uc *PrefsUsecase) Get(ctx context.Context, key string) (interface{}, error) {
	switch key {
	case domain.PrefSmsEnabled:
		return uc.prefsRepo.GetBool(ctx, key, domain.DefaultSmsEnabled)
	case domain.PrefServiceRunning:
		return uc.prefsRepo.GetBool(ctx, key, false)
	case domain.PrefAllowedPackages:
		return uc.prefsRepo.GetStringSet(ctx, key, domain.DefaultAllowedPackages())
	case domain.PrefEndpoint, domain.PrefPayloadTemplate, domain.PrefReception:
		return uc.prefsRepo.GetString(ctx, key, "")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPref, key)
	}
}

// Set stores value under key. Values decoded from JSON are accepted:
// bool for flags, string for text keys, a list of strings for the allow-list.
func (uc *PrefsUsecase) Set(ctx context.Context, key string, value interface{}) error {
	switch key {
	case domain.PrefSmsEnabled, domain.PrefServiceRunning:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s wants bool, got %T", ErrPrefType, key, value)
		}
		return uc.prefsRepo.SetBool(ctx, key, b)
	case domain.PrefAllowedPackages:
		set, err := toStringSlice(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrPrefType, key, err)
		}
		return uc.prefsRepo.SetStringSet(ctx, key, set)
	case domain.PrefEndpoint, domain.PrefPayloadTemplate, domain.PrefReception:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s wants string, got %T", ErrPrefType, key, value)
		}
		return uc.prefsRepo.SetString(ctx, key, s)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPref, key)
	}
}

func toStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %T is not a string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want list of strings, got %T", value)
	}
}
