package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, "techblog", cfg.Issuer)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, 5, cfg.LockoutMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.LockoutWindow)
	assert.Equal(t, time.Second, cfg.FailureDelayIncrement)
}

func TestParseFlags_Overrides(t *testing.T) {
	old := os.Args
	defer func() { os.Args = old }()
	os.Args = []string{"server", "-a", ":9090", "-s", "flagsecret", "-t", "30", "-r", "14", "-m", "3", "-l", "10"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddr)
	assert.Equal(t, "flagsecret", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 14*24*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, 3, cfg.LockoutMaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.LockoutWindow)
}

func TestParseFlags_IgnoresForeignFlags(t *testing.T) {
	old := os.Args
	defer func() { os.Args = old }()
	os.Args = []string{"server", "-zzz", "1", "-a", ":7070"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddr)
}

func TestParseJson_Overrides(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "conf*.json")
	require.NoError(t, err)
	_, err = f.WriteString(`{
		"endpoint_addr": ":6060",
		"database_dsn": "postgres://u:p@h:5432/blog",
		"secret_key": "jsonsecret",
		"issuer": "blog-json",
		"audience": "blog-clients",
		"access_token_validity_duration": "20m",
		"refresh_token_validity_duration": "72h",
		"lockout_max_attempts": 7,
		"lockout_window": "5m",
		"failure_delay_increment": "2s",
		"rate_limit_rps": 2.5,
		"rate_limit_burst": 4,
		"s3_root_user": "root",
		"s3_root_password": "pass",
		"s3_bucket": "imgs",
		"s3_region": "eu-west-1",
		"s3_base_endpoint": "http://minio:9000/"
	}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	old := os.Args
	defer func() { os.Args = old }()
	os.Args = []string{"server", "-c", f.Name()}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":6060", cfg.EndpointAddr)
	assert.Equal(t, "jsonsecret", cfg.SecretKey)
	assert.Equal(t, "blog-json", cfg.Issuer)
	assert.Equal(t, 20*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 72*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, 7, cfg.LockoutMaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.LockoutWindow)
	assert.Equal(t, 2*time.Second, cfg.FailureDelayIncrement)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, "imgs", cfg.S3Bucket)
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	old := os.Args
	defer func() { os.Args = old }()
	os.Args = []string{"server"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":8080", cfg.EndpointAddr)
}
