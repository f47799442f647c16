// AngelaMos | 2026
// config_test.go

package config

import (
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()

	k := koanf.New(".")
	require.NoError(t, loadDefaults(k))

	c := &Config{}
	require.NoError(t, k.Unmarshal("", c))
	return c
}

func TestDefaults(t *testing.T) {
	c := defaultConfig(t)

	assert.Equal(t, "development", c.App.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 15*time.Minute, c.JWT.AccessTokenExpire)
	assert.Equal(t, 7*24*time.Hour, c.JWT.RefreshTokenExpire)
	assert.Equal(t, 24*time.Hour, c.JWT.VerifyTokenExpire)
	assert.Equal(t, 5*time.Minute, c.Cache.CartTTL)
	assert.Equal(t, time.Hour, c.Sweep.Interval)
	assert.Equal(t, 24*time.Hour, c.Sweep.CartRetention)
	assert.True(t, c.CORS.AllowCredentials)
	assert.False(t, c.Otel.Enabled)
}

func validConfig(t *testing.T) *Config {
	t.Helper()

	c := defaultConfig(t)
	c.Mongo.URI = "mongodb://localhost:27017"
	c.Redis.URL = "redis://localhost:6379/0"
	return c
}

func TestValidateRequiresBackends(t *testing.T) {
	c := validConfig(t)
	require.NoError(t, validate(c))

	c.Mongo.URI = ""
	assert.Error(t, validate(c))

	c = validConfig(t)
	c.Redis.URL = ""
	assert.Error(t, validate(c))

	c = validConfig(t)
	c.JWT.PrivateKeyPath = ""
	assert.Error(t, validate(c))
}

func TestValidateRejectsWildcardWithCredentials(t *testing.T) {
	c := validConfig(t)
	c.CORS.AllowedOrigins = []string{"*"}

	assert.Error(t, validate(c))

	c.CORS.AllowCredentials = false
	assert.NoError(t, validate(c))
}

func TestValidateProductionTelemetry(t *testing.T) {
	c := validConfig(t)
	c.App.Environment = "production"
	c.Otel.Enabled = true
	c.Otel.Insecure = true

	assert.Error(t, validate(c))

	c.Otel.Insecure = false
	assert.NoError(t, validate(c))
}

func TestValidateRetentionWindows(t *testing.T) {
	c := validConfig(t)
	c.Sweep.OrderRetention = 0

	assert.Error(t, validate(c))
}

func TestEnvKeyReplacer(t *testing.T) {
	assert.Equal(t, "mongo.uri", envKeyReplacer("MONGO_URI"))
	assert.Equal(t, "smtp.operator_email", envKeyReplacer("OPERATOR_EMAIL"))
	assert.Equal(t, "app.base_url", envKeyReplacer("APP_BASE_URL"))

	// Unmapped variables are dropped, not passed through.
	assert.Empty(t, envKeyReplacer("PATH"))
}

func TestServerAddress(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 9000}
	assert.Equal(t, "127.0.0.1:9000", s.Address())
}

func TestEnvironmentHelpers(t *testing.T) {
	c := &Config{App: AppConfig{Environment: "production"}}
	assert.True(t, c.IsProduction())
	assert.False(t, c.IsDevelopment())
}
