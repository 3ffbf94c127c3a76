package integrationtest

import (
	"sync"

	"github.com/humanbelnik/kinoswap/matchroom/internal/config"
)

var (
	cfg     *config.Config
	cfgOnce sync.Once
)

// getConfig reads the environment only; config.Load would parse go test flags.
func getConfig() *config.Config {
	cfgOnce.Do(func() {
		cfg = config.FromEnv()
	})
	return cfg
}
