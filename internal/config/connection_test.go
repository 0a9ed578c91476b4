package config

import (
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigEnv(t *testing.T) {
	t.Setenv("MAPS_USER", "bob")
	t.Setenv("REDIS_FS_VOLUME", "photos")
	t.Setenv("MAPS_LOG_LEVEL", "debug")
	t.Setenv("REDISCLI_AUTH", "secret")

	c := DefaultConfig()
	assert.Equal(t, "bob", c.User)
	assert.Equal(t, "photos", c.Volume)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "secret", c.Password)
}

func TestRegisterFlags(t *testing.T) {
	c := DefaultConfig()
	flags := flag.NewFlagSet("maps-cli", flag.ContinueOnError)
	flags.SetInterspersed(false)
	c.RegisterFlags(flags)

	err := flags.Parse([]string{"--user", "carol", "-p", "6380", "--log-format", "json", "--metrics-addr", ":9100", "ls", "-l"})
	require.NoError(t, err)

	assert.Equal(t, "carol", c.User)
	assert.Equal(t, 6380, c.Port)
	assert.Equal(t, "json", c.Logging().Format)
	assert.Equal(t, ":9100", c.MetricsAddr)
	assert.Equal(t, []string{"ls", "-l"}, flags.Args())
}

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		network string
		addr    string
		db      int
	}{
		{"host and port", Config{Host: "redis", Port: 6380}, "", "redis:6380", 0},
		{"socket", Config{Host: "redis", Port: 6379, Socket: "/tmp/redis.sock"}, "unix", "/tmp/redis.sock", 0},
		{"uri", Config{URI: "redis://example:7000/2"}, "tcp", "example:7000", 2},
		{"uri db override", Config{URI: "redis://example:7000/2", DB: 5}, "tcp", "example:7000", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.cfg.RedisOptions()
			require.NoError(t, err)
			assert.Equal(t, tt.addr, opts.Addr)
			assert.Equal(t, tt.network, opts.Network)
			assert.Equal(t, tt.db, opts.DB)
		})
	}
}

func TestRedisOptionsBadURI(t *testing.T) {
	c := Config{URI: "http://nope"}
	_, err := c.RedisOptions()
	assert.Error(t, err)
}

func TestShouldColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.True(t, (&Config{}).ShouldColor())
	assert.False(t, (&Config{NoColor: true, Color: true}).ShouldColor())

	t.Setenv("NO_COLOR", "1")
	assert.False(t, (&Config{}).ShouldColor())
	assert.True(t, (&Config{Color: true}).ShouldColor())
}
