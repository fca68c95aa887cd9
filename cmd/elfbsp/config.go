// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"io/ioutil"
	"path/filepath"

	"github.com/imdario/mergo"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/sisatech/toml"

	"github.com/rfomin/elfbsp/pkg/builder"
)

// fileConfig mirrors the [defaults] table of ~/.elfbsprc, letting a user
// pin their preferred build settings instead of repeating flags.
type fileConfig struct {
	Defaults struct {
		Fast      bool   `toml:"fast"`
		SplitCost int    `toml:"split-cost"`
		ForceXNOD bool   `toml:"force-xnod"`
		SsectXGL3 bool     `toml:"ssect-xgl3"`
		Map       string   `toml:"map"`
		Ignore    []string `toml:"ignore"`
	} `toml:"defaults"`
}

// loadUserConfig reads ~/.elfbsprc if present and returns the zero value,
// unchanged, when it is absent: a missing config file is not an error.
func loadUserConfig() (fileConfig, error) {
	var fc fileConfig

	home, err := homedir.Dir()
	if err != nil {
		return fc, err
	}

	data, err := ioutil.ReadFile(filepath.Join(home, ".elfbsprc"))
	if err != nil {
		return fc, nil
	}

	if err := toml.Unmarshal(data, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// applyUserConfig merges fc's [defaults] into cfg, letting any flag the
// user actually passed on the command line take precedence (mergo's
// WithOverride would let the file win, so defaults are merged into cfg
// only where cfg still holds a zero value; split-cost, whose flag default
// is non-zero, is taken from the file unless -c/--cost was passed).
func applyUserConfig(cfg *builder.Config, fc fileConfig) error {
	fileCfg := builder.Config{
		Fast:      fc.Defaults.Fast,
		SplitCost: fc.Defaults.SplitCost,
		ForceXNOD: fc.Defaults.ForceXNOD,
		SsectXGL3: fc.Defaults.SsectXGL3,
	}
	if err := mergo.Merge(cfg, fileCfg); err != nil {
		return err
	}
	if fc.Defaults.SplitCost != 0 && !flagSet().Changed("cost") {
		cfg.SplitCost = fc.Defaults.SplitCost
	}
	return nil
}
