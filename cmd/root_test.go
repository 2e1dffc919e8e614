// cmd/root_test.go
package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/labelpilot/internal/config"
)

func TestInitializeConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, initializeConfig())

	var cfg config.Config
	require.NoError(t, viper.Unmarshal(&cfg))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "US", cfg.Bulk.Country)
}

func TestInitializeConfigEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("LABELPILOT_BULK_COUNTRY", "CA")

	require.NoError(t, initializeConfig())
	assert.Equal(t, "CA", viper.GetString("bulk.country"))
}

func TestRunCommandRegistered(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "run")
}
