package config

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v2"
)

func MarshalYAML(config Config) ([]byte, error) {
	return yaml.Marshal(config)
}

func UnmarshalYAML(bz []byte, config *Config) error {
	if err := yaml.UnmarshalStrict(bz, config); err != nil {
		return errors.Wrap(err, "failed to decode config")
	}
	return nil
}
