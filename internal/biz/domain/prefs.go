package domain

// Preference keys of the persistent key-value store
const (
	PrefEndpoint        = "endpoint"
	PrefPayloadTemplate = "payload_template"
	PrefReception       = "reception"
	PrefSmsEnabled      = "sms_enabled"
	PrefAllowedPackages = "allowed_packages"
	PrefServiceRunning  = "service_running"
)

// DefaultAllowedPackages returns the allow-list used when none is stored
func DefaultAllowedPackages() []string {
	return []string{
		"com.google.android.apps.messaging",
		"com.google.android.dialer",
	}
}

// DefaultSmsEnabled is used when sms_enabled is not stored
const DefaultSmsEnabled = true

// IsKnownPref reports whether key is one of the preference keys above
func IsKnownPref(key string) bool {
	switch key {
	case PrefEndpoint, PrefPayloadTemplate, PrefReception, PrefSmsEnabled, PrefAllowedPackages, PrefServiceRunning:
		return true
	}
	return false
}
