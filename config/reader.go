package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/armtraj/logging"
)

// Read reads a config from the given file. Environment variables in the file such as ${HOME} are
// substituted before parsing.
func Read(ctx context.Context, filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies where, if applicable, the file
// the reader originated from.
func FromReader(ctx context.Context, originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config from json")
	}

	cfg := &Config{}
	if err := DecodeAttributes(raw, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process Config")
	}
	cfg.ConfigFilePath = originalPath

	if err := cfg.Ensure(); err != nil {
		return nil, err
	}
	logger.CDebugw(ctx, "read config", "path", originalPath, "dof", cfg.Arm.DoF, "bind_address", cfg.Network.BindAddress)
	return cfg, nil
}

// DecodeAttributes decodes a generic attribute map into to. Unknown keys are rejected and
// durations may be given as strings such as "10ms".
func DecodeAttributes(attributes map[string]interface{}, to interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      to,
		TagName:     "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(attributes)
}
