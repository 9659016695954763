package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONNECTOR_LEDGERS", `["USD@https://l1.example","EUR@https://l2.example"]`)
	t.Setenv("CONNECTOR_CREDENTIALS", `{
		"https://l1.example": {"account": "https://l1.example/accounts/conn", "username": "conn", "password": "s1", "type": "mock"},
		"https://l2.example": {"account": "https://l2.example/accounts/conn", "username": "conn", "password": "s2", "type": "mock"}
	}`)
	t.Setenv("CONNECTOR_NOTIFICATION_VERIFY", "false")
}

func assemble(t *testing.T, opts Options) (*ResolvedConfig, error) {
	t.Helper()
	return Assemble(NewEnvSource(), opts, zap.NewNop())
}

func TestAssembleDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := assemble(t, Options{})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if cfg.Backend != "fixerio" {
		t.Errorf("expected default backend fixerio, got %s", cfg.Backend)
	}
	if !cfg.Spread.Equal(decimal.RequireFromString("0.002")) {
		t.Errorf("expected default spread 0.002, got %s", cfg.Spread)
	}
	if !cfg.Slippage.Equal(decimal.RequireFromString("0.001")) {
		t.Errorf("expected default slippage 0.001, got %s", cfg.Slippage)
	}
	if cfg.MinMessageWindow != time.Second {
		t.Errorf("expected min message window 1s, got %s", cfg.MinMessageWindow)
	}
	if cfg.MaxHoldTime != 10*time.Second {
		t.Errorf("expected max hold time 10s, got %s", cfg.MaxHoldTime)
	}
	if cfg.RouteBroadcastInterval != 30*time.Second {
		t.Errorf("expected route broadcast interval 30s, got %s", cfg.RouteBroadcastInterval)
	}
	if cfg.RouteCleanupInterval != time.Second {
		t.Errorf("expected route cleanup interval 1s, got %s", cfg.RouteCleanupInterval)
	}
	if cfg.RouteExpiry != 45*time.Second {
		t.Errorf("expected route expiry 45s, got %s", cfg.RouteExpiry)
	}
	if len(cfg.Pairs) != 2 {
		t.Errorf("expected 2 generated pairs, got %v", cfg.Pairs)
	}
	if cfg.Admin != nil {
		t.Errorf("expected no admin credential, got %+v", cfg.Admin)
	}
	if len(cfg.LedgerCredentials) != 2 {
		t.Errorf("expected 2 resolved credentials, got %v", cfg.LedgerCredentials)
	}
}

func TestAssembleKnobOverridesAndFallbacks(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CONNECTOR_FX_SPREAD", "0.01")
	t.Setenv("CONNECTOR_SLIPPAGE", "garbage")
	t.Setenv("CONNECTOR_MAX_HOLD_TIME", "30")
	t.Setenv("CONNECTOR_ROUTE_BROADCAST_INTERVAL", "ten")

	cfg, err := assemble(t, Options{})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if !cfg.Spread.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("expected overridden spread 0.01, got %s", cfg.Spread)
	}
	if !cfg.Slippage.Equal(decimal.RequireFromString("0.001")) {
		t.Errorf("unparsable slippage should keep default, got %s", cfg.Slippage)
	}
	if cfg.MaxHoldTime != 30*time.Second {
		t.Errorf("expected max hold time 30s, got %s", cfg.MaxHoldTime)
	}
	if cfg.RouteBroadcastInterval != 30*time.Second {
		t.Errorf("unparsable interval should keep default, got %s", cfg.RouteBroadcastInterval)
	}
}

func TestAssembleExplicitPairsWin(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CONNECTOR_PAIRS", `[["EUR@https://l2.example","USD@https://l1.example"]]`)

	cfg, err := assemble(t, Options{})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(cfg.Pairs) != 1 || cfg.Pairs[0].Source.Currency != "EUR" {
		t.Errorf("explicit pairs should win over generation, got %v", cfg.Pairs)
	}
}

func TestAssembleEmptyPairListTriggersGeneration(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CONNECTOR_PAIRS", `[]`)

	cfg, err := assemble(t, Options{})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(cfg.Pairs) != 2 {
		t.Errorf("empty explicit pair list should fall back to generation, got %v", cfg.Pairs)
	}
}

func TestAssembleMalformedJSONIsFatal(t *testing.T) {
	for key, value := range map[string]string{
		"CONNECTOR_CREDENTIALS":       "{broken",
		"CONNECTOR_LEDGERS":           "[broken",
		"CONNECTOR_PAIRS":             "[broken",
		"CONNECTOR_NOTIFICATION_KEYS": "{broken",
	} {
		t.Run(key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(key, value)
			if _, err := assemble(t, Options{}); err == nil {
				t.Errorf("expected fatal error for malformed %s, got nil", key)
			}
		})
	}
}

func TestAssembleNotificationVerifyDefaultsOn(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CONNECTOR_NOTIFICATION_VERIFY", "")

	_, err := assemble(t, Options{})
	if err == nil || !strings.Contains(err.Error(), "notification") {
		t.Errorf("verification should default on in production mode and fail without keys, got %v", err)
	}
}

func TestAssembleAutoFundRequiresAdmin(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CONNECTOR_DEBUG_AUTOFUND", "true")

	_, err := assemble(t, Options{})
	if err == nil || !strings.Contains(err.Error(), "admin credential") {
		t.Errorf("expected auto-fund/admin cross-field error, got %v", err)
	}

	// A username alone is not a usable admin credential.
	t.Setenv("CONNECTOR_ADMIN_USER", "admin")
	if _, err := assemble(t, Options{}); err == nil {
		t.Error("expected error with incomplete admin credential, got nil")
	}

	t.Setenv("CONNECTOR_ADMIN_PASS", "hunter2")
	cfg, err := assemble(t, Options{})
	if err != nil {
		t.Fatalf("Assemble failed with complete admin credential: %v", err)
	}
	if cfg.Admin == nil || cfg.Admin.Username != "admin" || cfg.Admin.Password != "hunter2" {
		t.Errorf("unexpected admin credential: %+v", cfg.Admin)
	}
}

func TestAssembleLoadsCredentialFiles(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "client.key")
	certPath := filepath.Join(dir, "client.crt")
	caPath := filepath.Join(dir, "ca.crt")
	for path, content := range map[string]string{
		keyPath:  "key-bytes",
		certPath: "cert-bytes",
		caPath:   "ca-bytes",
	} {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	t.Setenv("CONNECTOR_LEDGERS", `["USD@https://l1.example"]`)
	t.Setenv("CONNECTOR_NOTIFICATION_VERIFY", "false")
	t.Setenv("CONNECTOR_CREDENTIALS", `{
		"https://l1.example": {
			"account": "https://l1.example/accounts/conn",
			"username": "conn",
			"key": "`+keyPath+`",
			"cert": "`+certPath+`",
			"ca": "`+caPath+`"
		}
	}`)

	cfg, err := assemble(t, Options{})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	cred := cfg.LedgerCredentials["https://l1.example"]
	if string(cred.Key) != "key-bytes" || string(cred.Cert) != "cert-bytes" || string(cred.CA) != "ca-bytes" {
		t.Errorf("credential files not loaded into memory: %+v", cred)
	}
}

func TestAssembleRoundTrip(t *testing.T) {
	setBaseEnv(t)

	first, err := assemble(t, Options{})
	if err != nil {
		t.Fatalf("first Assemble failed: %v", err)
	}
	second, err := assemble(t, Options{})
	if err != nil {
		t.Fatalf("second Assemble failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("assembly is not a pure function of the environment:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAssembleTestMode(t *testing.T) {
	// Credentials that would fail production validation: test mode bypasses
	// the credential/file validation path entirely.
	t.Setenv("CONNECTOR_LEDGERS", `["USD@https://l1.example","EUR@https://l2.example"]`)
	t.Setenv("CONNECTOR_CREDENTIALS", `{"https://l1.example": {"username": "conn"}}`)

	dir := t.TempDir()
	credsPath := filepath.Join(dir, "creds.yaml")
	pairsPath := filepath.Join(dir, "pairs.yaml")
	credsYAML := `
"https://l1.example":
  account: https://l1.example/accounts/test
  username: test
  password: test
  type: mock
`
	pairsYAML := `
- ["USD@https://l1.example", "EUR@https://l2.example"]
`
	if err := os.WriteFile(credsPath, []byte(credsYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pairsPath, []byte(pairsYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := assemble(t, Options{
		TestMode:            true,
		TestCredentialsFile: credsPath,
		TestPairsFile:       pairsPath,
	})
	if err != nil {
		t.Fatalf("Assemble failed in test mode: %v", err)
	}

	if !cfg.DebugReplyNotifications {
		t.Error("test mode should force reply notifications on")
	}
	if cfg.Notifications.MustVerify {
		t.Error("verification should default off in test mode")
	}
	cred, ok := cfg.LedgerCredentials["https://l1.example"]
	if !ok || cred.Account != "https://l1.example/accounts/test" || cred.Type != "mock" {
		t.Errorf("fixture credentials not applied: %+v", cfg.LedgerCredentials)
	}
	if len(cfg.Pairs) != 1 || cfg.Pairs[0].Source.Currency != "USD" {
		t.Errorf("fixture pairs not applied: %v", cfg.Pairs)
	}
}
