package config

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// InstanceID derives a stable identifier for a daemon instance from its
// resolved configuration. Two daemons with identical configuration get the
// same ID; any material change produces a new one. Used in log context and
// the control API health payload.
func InstanceID(cfg *Config) (string, error) {
	// Marshal the resolved config rather than the on-disk bytes so that
	// formatting and comment changes don't alter identity.
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config for hashing: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])[:16], nil
}
