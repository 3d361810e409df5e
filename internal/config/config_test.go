package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
}

func TestSessionConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"Timeout", cfg.Session.Timeout, 30 * time.Minute},
		{"WarningWindow", cfg.Session.WarningWindow, 5 * time.Minute},
		{"ActivityDebounce", cfg.Session.ActivityDebounce, 60 * time.Second},
		{"CleanupInterval", cfg.Session.CleanupInterval, 10 * time.Minute},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}
}

func TestSessionConfig_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("SESSION_TIMEOUT", "45m")
	os.Setenv("SESSION_WARNING_WINDOW", "10m")
	os.Setenv("SESSION_ACTIVITY_DEBOUNCE", "30s")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Session.Timeout != 45*time.Minute {
		t.Errorf("Timeout: got %v, want 45m", cfg.Session.Timeout)
	}
	if cfg.Session.WarningWindow != 10*time.Minute {
		t.Errorf("WarningWindow: got %v, want 10m", cfg.Session.WarningWindow)
	}
	if cfg.Session.ActivityDebounce != 30*time.Second {
		t.Errorf("ActivityDebounce: got %v, want 30s", cfg.Session.ActivityDebounce)
	}
}

func TestSessionConfig_WarningMustBeShorterThanTimeout(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("SESSION_TIMEOUT", "5m")
	os.Setenv("SESSION_WARNING_WINDOW", "5m")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for warning window >= timeout")
	}
}

func TestStoreConfig_DefaultsToPostgres(t *testing.T) {
	setRequiredEnv(t)
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Store.Backend != BackendPostgres {
		t.Errorf("Backend: got %q, want %q", cfg.Store.Backend, BackendPostgres)
	}
}

func TestStoreConfig_RemoteRequiresURL(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("STORE_BACKEND", "remote")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for remote backend without URL")
	}

	os.Setenv("STORE_REMOTE_URL", "https://script.example.com/exec")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if cfg.Store.Backend != BackendRemote {
		t.Errorf("Backend: got %q, want %q", cfg.Store.Backend, BackendRemote)
	}
}

func TestStoreConfig_UnknownBackendRejected(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("STORE_BACKEND", "sheets")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for unknown backend")
	}
}

func TestBootstrapConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Bootstrap.AdminID != "admin" {
		t.Errorf("AdminID: got %q, want %q", cfg.Bootstrap.AdminID, "admin")
	}
	if cfg.Bootstrap.AdminPassword != "123456" {
		t.Errorf("AdminPassword: got %q, want default", cfg.Bootstrap.AdminPassword)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing JWT_SECRET")
	}
}

func TestLoad_RejectsShortJWTSecretInProduction(t *testing.T) {
	os.Setenv("JWT_SECRET", "short-secret-16ch")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ENV", "production")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for short secret in production")
	}
}
