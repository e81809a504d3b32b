package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_OverlaysValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")

	body := `{
		"server_endpoint_addr": "http://server:3000",
		"request_timeout": "10s"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd", "-c", path}

	config := &Config{}
	config.LoadDefaults()
	parseJson(config)

	assert.Equal(t, "http://server:3000", config.ServerEndpointAddr)
	assert.Equal(t, 10*time.Second, config.RequestTimeout)
}

func TestParseJson_NoFlagLeavesDefaults(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd"}

	config := &Config{}
	config.LoadDefaults()
	parseJson(config)

	assert.Equal(t, "http://127.0.0.1:3000", config.ServerEndpointAddr)
	assert.Equal(t, 5*time.Second, config.RequestTimeout)
}
