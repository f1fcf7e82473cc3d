package ioconfig

import (
	"github.com/gnames/gnclade/pkg/config"
	"gopkg.in/yaml.v3"
)

// Dump renders persistent settings of a config in config.yaml format.
func Dump(cfg *config.Config) (string, error) {
	bs, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}
