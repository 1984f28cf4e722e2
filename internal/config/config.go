// Package config loads the changer configuration file. All operational
// toggles and utility paths are resolved here once, before any component
// runs; the resulting Settings value is read-only afterwards.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the top-level configuration
type Settings struct {
	// ChangerName tags log lines when one config file serves several
	// libraries.
	ChangerName string `yaml:"changer_name"`

	AutoClean           bool `yaml:"auto_clean"`
	CheckDrive          bool `yaml:"check_drive"`
	IncludeImportExport bool `yaml:"include_import_export"`
	InventoryBeforeList bool `yaml:"inventory_before_list"`
	OfflineBeforeUnload bool `yaml:"offline_before_unload"`
	VXAPacketLoader     bool `yaml:"vxa_packetloader"`

	LoadWaitSeconds     int `yaml:"load_wait_seconds"`
	CleanWaitSeconds    int `yaml:"clean_wait_seconds"`
	OfflineSleepSeconds int `yaml:"offline_sleep_seconds"`
	LoadSleepSeconds    int `yaml:"load_sleep_seconds"`

	CleaningLabelPrefix string   `yaml:"cleaning_label_prefix"`
	CleaningAlertCodes  []string `yaml:"cleaning_alert_codes"`

	MtxBin      string `yaml:"mtx_bin"`
	MtBin       string `yaml:"mt_bin"`
	TapeinfoBin string `yaml:"tapeinfo_bin"`
	LsscsiBin   string `yaml:"lsscsi_bin"`

	// DBPath enables the sqlite operation history when set.
	DBPath string `yaml:"db_path"`
}

// DefaultSettings returns a config with sensible defaults
func DefaultSettings() *Settings {
	return &Settings{
		LoadWaitSeconds:     300,
		CleanWaitSeconds:    90,
		CleaningLabelPrefix: "CLN",
		CleaningAlertCodes:  []string{"20", "21"},
		MtxBin:              "/usr/sbin/mtx",
		MtBin:               "/usr/bin/mt",
		TapeinfoBin:         "/usr/sbin/tapeinfo",
		LsscsiBin:           "/usr/bin/lsscsi",
	}
}

// Load reads a config file from the given path. Unknown keys are rejected
// rather than silently adopted.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultSettings()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() (string, error) {
	searchPaths := []string{
		"tapechanger.yaml",
		"/etc/tapechanger/tapechanger.yaml",
		"/opt/bacula/scripts/tapechanger.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(home, ".config", "tapechanger", "tapechanger.yaml"),
		)
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", searchPaths)
}
