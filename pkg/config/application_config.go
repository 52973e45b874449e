package config

import (
	"errors"

	"github.com/nspcc-dev/ticketsim/pkg/core/storage/dbconfig"
	"go.uber.org/zap/zapcore"
)

// ApplicationConfiguration config specific to the simulator process.
type ApplicationConfiguration struct {
	LogLevel        string                   `yaml:"LogLevel"`
	LogPath         string                   `yaml:"LogPath"`
	DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`
	// ReceiptCacheSize is the number of recent receipts kept in memory.
	ReceiptCacheSize int          `yaml:"ReceiptCacheSize"`
	Prometheus       BasicService `yaml:"Prometheus"`
}

// Validate checks ApplicationConfiguration for internal consistency and returns
// an error if any invalid settings are found.
func (a *ApplicationConfiguration) Validate() error {
	if a.LogLevel != "" {
		if _, err := zapcore.ParseLevel(a.LogLevel); err != nil {
			return err
		}
	}
	if a.ReceiptCacheSize < 0 {
		return errors.New("ReceiptCacheSize can't be negative")
	}
	if a.Prometheus.Enabled && len(a.Prometheus.Addresses) == 0 {
		return errors.New("Prometheus is enabled, but no addresses are configured")
	}
	return nil
}
