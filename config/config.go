// Copyright (C) 2019-2024 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ConfigFilename is the name of the config.json file where we store per-host overrides
const ConfigFilename = "config.json"

// GenesisJSONFile is the name of the genesis.json file
const GenesisJSONFile = "genesis.json"

// LockFilename is the data directory lock held while a host has the store open
const LockFilename = "testwax.lock"

// Storage engines understood by ledger.OpenStore.
const (
	StorageEnginePebble = "pebbledb"
	StorageEngineSQLite = "sqlite"
)

// Local holds the per-host configuration settings.
//
// New fields may be added, but existing json names must not change:
// config files written by SaveToDisk only carry non-default values.
type Local struct {
	// Version tracks the current version of the defaults so we can migrate old -> new
	Version uint32

	// StorageEngine selects the ledger store driver: "pebbledb" or "sqlite".
	StorageEngine string

	// InMemory keeps the store in memory; the data directory only holds config and genesis.
	InMemory bool

	// EndpointAddress is the address the REST API listens on.
	EndpointAddress string

	// APIToken, when non-empty, must be sent in the X-Wax-API-Token header.
	APIToken string

	// EnableMetrics exposes prometheus metrics at /metrics.
	EnableMetrics bool

	// BaseLoggerDebugLevel sets the logging level (0 panic .. 5 debug).
	BaseLoggerDebugLevel uint32

	// LogFile is the log file name, relative to the data directory. Empty logs to stderr.
	LogFile string

	// LogFileMaxSizeMB is the size at which the log file is rotated.
	LogFileMaxSizeMB int

	// LogFileMaxBackups is the number of rotated log files kept.
	LogFileMaxBackups int

	// LogJSON switches the log output to JSON.
	LogJSON bool

	// DeadlockDetection enables (1) or disables (-1) lock-order checking of
	// the daemon's mutexes. 0 keeps the library default.
	DeadlockDetection int

	// DeadlockDetectionThreshold is the number of seconds a lock may be
	// waited on before it is reported as a potential deadlock.
	DeadlockDetectionThreshold int
}

const currentConfigVersion = 1

var defaultLocal = Local{
	Version:              currentConfigVersion,
	StorageEngine:        StorageEnginePebble,
	InMemory:             false,
	EndpointAddress:      "127.0.0.1:8980",
	APIToken:             "",
	EnableMetrics:        true,
	BaseLoggerDebugLevel: 4,
	LogFile:              "",
	LogFileMaxSizeMB:     100,
	LogFileMaxBackups:    3,
	LogJSON:              false,

	DeadlockDetection:          0,
	DeadlockDetectionThreshold: 30,
}

// GetDefaultLocal returns a copy of the current defaultLocal config
func GetDefaultLocal() Local {
	return defaultLocal
}

// LoadConfigFromDisk returns a Local config structure based on merging the defaults
// with settings loaded from the config file from the custom dir.  A missing config
// file is not an error: the defaults are returned.
func LoadConfigFromDisk(custom string) (c Local, err error) {
	c, err = loadConfigFromFile(filepath.Join(custom, ConfigFilename))
	if errors.Is(err, fs.ErrNotExist) {
		return defaultLocal, nil
	}
	return
}

func loadConfigFromFile(configFile string) (c Local, err error) {
	c = defaultLocal
	f, err := os.Open(configFile)
	if err != nil {
		return
	}
	defer f.Close()

	err = loadConfig(f, &c)
	if err != nil {
		return
	}
	return c, c.Validate()
}

func loadConfig(reader io.Reader, config *Local) error {
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	return dec.Decode(config)
}

// Validate checks settings that would otherwise fail much later.
func (cfg Local) Validate() error {
	switch cfg.StorageEngine {
	case StorageEnginePebble, StorageEngineSQLite:
	default:
		return errors.New("config: StorageEngine must be \"pebbledb\" or \"sqlite\", got " + cfg.StorageEngine)
	}
	if cfg.BaseLoggerDebugLevel > 5 {
		return errors.New("config: BaseLoggerDebugLevel must be between 0 and 5")
	}
	return nil
}

// SaveToDisk writes the Local settings into a root/ConfigFilename file
func (cfg Local) SaveToDisk(root string) error {
	configpath := filepath.Join(root, ConfigFilename)
	filename := os.ExpandEnv(configpath)
	return cfg.SaveToFile(filename)
}

// SaveToFile saves the config to a specific filename, allowing overriding the default name
func (cfg Local) SaveToFile(filename string) error {
	var alwaysInclude []string
	alwaysInclude = append(alwaysInclude, "Version")
	return saveNonDefaultValuesToFile(filename, cfg, defaultLocal, alwaysInclude)
}
