package conf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
)

// PrefsSeed holds initial preference values loaded from YAML.
// Pointer fields distinguish "not in file" from zero values.
type PrefsSeed struct {
	Prefs SeedValues `yaml:"prefs"`
}

// SeedValues contains the seedable preferences
type SeedValues struct {
	Endpoint        *string  `yaml:"endpoint"`
	PayloadTemplate *string  `yaml:"payload_template"`
	Reception       *string  `yaml:"reception"`
	SmsEnabled      *bool    `yaml:"sms_enabled"`
	AllowedPackages []string `yaml:"allowed_packages"`
}

// LoadPrefsSeed loads the preference seed from YAML.
// Without an explicit path the usual locations are tried; no file yields an empty seed.
func LoadPrefsSeed(configPath string) (*PrefsSeed, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/prefs.yaml",
			"/etc/msg-mirror/prefs.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "prefs.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		if b, err := os.ReadFile(p); err == nil {
			data = b
			loadedPath = p
			break
		}
	}

	if data == nil {
		if configPath != "" {
			return nil, fmt.Errorf("failed to read prefs seed %s", configPath)
		}
		fmt.Println("[Config] No prefs.yaml found, using defaults")
		return &PrefsSeed{}, nil
	}

	fmt.Printf("[Config] Loading prefs seed from: %s\n", loadedPath)

	var seed PrefsSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse prefs seed: %w", err)
	}
	return &seed, nil
}

// Apply writes every seeded value whose key is not stored yet.
// Returns the keys written.
func (s *PrefsSeed) Apply(ctx context.Context, prefs repo.PrefsRepo) ([]string, error) {
	var written []string

	setIfAbsent := func(key string, set func() error) error {
		has, err := prefs.Has(ctx, key)
		if err != nil {
			return err
		}
		if has {
			return nil
		}
		if err := set(); err != nil {
			return err
		}
		written = append(written, key)
		return nil
	}

	v := s.Prefs
	steps := []struct {
		key     string
		present bool
		set     func() error
	}{
		{domain.PrefEndpoint, v.Endpoint != nil, func() error { return prefs.SetString(ctx, domain.PrefEndpoint, *v.Endpoint) }},
		{domain.PrefPayloadTemplate, v.PayloadTemplate != nil, func() error { return prefs.SetString(ctx, domain.PrefPayloadTemplate, *v.PayloadTemplate) }},
		{domain.PrefReception, v.Reception != nil, func() error { return prefs.SetString(ctx, domain.PrefReception, *v.Reception) }},
		{domain.PrefSmsEnabled, v.SmsEnabled != nil, func() error { return prefs.SetBool(ctx, domain.PrefSmsEnabled, *v.SmsEnabled) }},
		{domain.PrefAllowedPackages, v.AllowedPackages != nil, func() error { return prefs.SetStringSet(ctx, domain.PrefAllowedPackages, v.AllowedPackages) }},
	}
	for _, step := range steps {
		if !step.present {
			continue
		}
		if err := setIfAbsent(step.key, step.set); err != nil {
			return written, fmt.Errorf("failed to seed %s: %w", step.key, err)
		}
	}
	return written, nil
}
