package config

import (
	"strconv"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the connector reads,
// so the key "credentials" resolves to CONNECTOR_CREDENTIALS.
const EnvPrefix = "connector"

// Environment variable keys (without prefix).
const (
	keyCredentials             = "credentials"
	keyLedgers                 = "ledgers"
	keyPairs                   = "pairs"
	keyAdminUser               = "admin_user"
	keyAdminPass               = "admin_pass"
	keyAdminKey                = "admin_key"
	keyAdminCert               = "admin_cert"
	keyAdminCA                 = "admin_ca"
	keyNotificationVerify      = "notification_verify"
	keyNotificationKeys        = "notification_keys"
	keyDebugAutoFund           = "debug_autofund"
	keyDebugReplyNotifications = "debug_reply_notifications"
	keyBackend                 = "backend"
	keyBackendURI              = "backend_uri"
	keyBaseURI                 = "base_uri"
	keyMinMessageWindow        = "min_message_window"
	keyMaxHoldTime             = "max_hold_time"
	keyFxSpread                = "fx_spread"
	keySlippage                = "slippage"
	keyRouteBroadcastInterval  = "route_broadcast_interval"
	keyRouteCleanupInterval    = "route_cleanup_interval"
	keyRouteExpiry             = "route_expiry"
	keyLogLevel                = "log_level"
	keyLogFormat               = "log_format"
)

// EnvSource reads raw string values from the process environment under the
// connector prefix. It performs no validation or parsing beyond the lookup;
// an unset variable reads as the empty string.
type EnvSource struct {
	v *viper.Viper
}

// NewEnvSource returns an EnvSource bound to the live process environment.
func NewEnvSource() *EnvSource {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return &EnvSource{v: v}
}

// Get returns the raw value for the prefixed key, or "" when unset.
func (e *EnvSource) Get(key string) string {
	return e.v.GetString(key)
}

// GetBool parses the value as a boolean, falling back to def when the
// variable is unset or unparsable.
func (e *EnvSource) GetBool(key string, def bool) bool {
	raw := e.Get(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

// GetInt parses the value as an integer, falling back to def when the
// variable is unset or unparsable.
func (e *EnvSource) GetInt(key string, def int) int {
	raw := e.Get(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}
