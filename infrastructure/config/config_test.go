package config

import (
	"os"
	"path/filepath"
	"testing"
)

func tempAppDir(t *testing.T) string {
	appDir, err := os.MkdirTemp("", "ulordd-config")
	if err != nil {
		t.Fatalf("Failed creating a temporary directory: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(appDir) })
	return appDir
}

func TestLoadConfigDefaults(t *testing.T) {
	appDir := tempAppDir(t)

	cfg, err := LoadConfig([]string{"--appdir", appDir, "--importfile", "blocks.dat"})
	if err != nil {
		t.Fatalf("TestLoadConfigDefaults: LoadConfig: %s", err)
	}
	if cfg.NetParams().Name != "mainnet" {
		t.Fatalf("TestLoadConfigDefaults: got network %s, want mainnet", cfg.NetParams().Name)
	}
	if cfg.DbType != defaultDbType {
		t.Fatalf("TestLoadConfigDefaults: got db type %s, want %s", cfg.DbType, defaultDbType)
	}
	if cfg.CacheSize != defaultCacheSize {
		t.Fatalf("TestLoadConfigDefaults: got cache size %d, want %d", cfg.CacheSize, defaultCacheSize)
	}
	if cfg.HeadersOnly {
		t.Fatalf("TestLoadConfigDefaults: headers only mode is on by default")
	}

	expectedDataDir := filepath.Join(appDir, "data", "mainnet")
	if cfg.DataDir != expectedDataDir {
		t.Fatalf("TestLoadConfigDefaults: got data dir %s, want %s", cfg.DataDir, expectedDataDir)
	}
	expectedLogFile := filepath.Join(appDir, "logs", "mainnet", defaultLogFilename)
	if cfg.LogFile != expectedLogFile {
		t.Fatalf("TestLoadConfigDefaults: got log file %s, want %s", cfg.LogFile, expectedLogFile)
	}
	expectedErrLogFile := filepath.Join(appDir, "logs", "mainnet", defaultErrLogFilename)
	if cfg.ErrLogFile != expectedErrLogFile {
		t.Fatalf("TestLoadConfigDefaults: got error log file %s, want %s", cfg.ErrLogFile, expectedErrLogFile)
	}
	if cfg.ImportFile != "blocks.dat" {
		t.Fatalf("TestLoadConfigDefaults: unexpected import file %s", cfg.ImportFile)
	}
}

func TestLoadConfigNetworks(t *testing.T) {
	tests := []struct {
		flag    string
		network string
	}{
		{flag: "--testnet", network: "testnet"},
		{flag: "--regtest", network: "regtest"},
		{flag: "--devnet", network: "devnet"},
		{flag: "--unittest", network: "unittest"},
	}

	for _, test := range tests {
		appDir := tempAppDir(t)
		cfg, err := LoadConfig([]string{"--appdir", appDir, "--importfile", "blocks.dat", test.flag})
		if err != nil {
			t.Fatalf("TestLoadConfigNetworks: %s: LoadConfig: %s", test.flag, err)
		}
		if cfg.NetParams().Name != test.network {
			t.Fatalf("TestLoadConfigNetworks: %s: got network %s, want %s",
				test.flag, cfg.NetParams().Name, test.network)
		}
		expectedDataDir := filepath.Join(appDir, "data", test.network)
		if cfg.DataDir != expectedDataDir {
			t.Fatalf("TestLoadConfigNetworks: %s: got data dir %s, want %s",
				test.flag, cfg.DataDir, expectedDataDir)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	appDir := tempAppDir(t)
	configContent := "[Application Options]\ndbtype=bolt\ncachesize=10\ntestnet=1\nheadersonly=1\n"
	err := os.WriteFile(filepath.Join(appDir, defaultConfigFilename), []byte(configContent), 0600)
	if err != nil {
		t.Fatalf("TestLoadConfigFile: WriteFile: %s", err)
	}

	cfg, err := LoadConfig([]string{"--appdir", appDir, "--importfile", "blocks.dat"})
	if err != nil {
		t.Fatalf("TestLoadConfigFile: LoadConfig: %s", err)
	}
	if cfg.DbType != "bolt" {
		t.Fatalf("TestLoadConfigFile: got db type %s, want bolt", cfg.DbType)
	}
	if cfg.CacheSize != 10 {
		t.Fatalf("TestLoadConfigFile: got cache size %d, want 10", cfg.CacheSize)
	}
	if !cfg.HeadersOnly {
		t.Fatalf("TestLoadConfigFile: headers only mode was not read from the config file")
	}
	if cfg.NetParams().Name != "testnet" {
		t.Fatalf("TestLoadConfigFile: got network %s, want testnet", cfg.NetParams().Name)
	}

	// Command line options take precedence over the config file.
	cfg, err = LoadConfig([]string{"--appdir", appDir, "--importfile", "blocks.dat", "--dbtype", "memory"})
	if err != nil {
		t.Fatalf("TestLoadConfigFile: LoadConfig: %s", err)
	}
	if cfg.DbType != "memory" {
		t.Fatalf("TestLoadConfigFile: got db type %s, want memory", cfg.DbType)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "multiple networks", args: []string{"--importfile", "blocks.dat", "--testnet", "--regtest"}},
		{name: "unknown db type", args: []string{"--importfile", "blocks.dat", "--dbtype", "ffldb"}},
		{name: "negative cache size", args: []string{"--importfile", "blocks.dat", "--cachesize", "-1"}},
		{name: "missing import file", args: []string{}},
		{name: "invalid debug level", args: []string{"--importfile", "blocks.dat", "--debuglevel", "loud"}},
		{name: "unknown subsystem", args: []string{"--importfile", "blocks.dat", "--debuglevel", "NOPE=debug"}},
		{name: "unknown flag", args: []string{"--importfile", "blocks.dat", "--rpclisten", "127.0.0.1"}},
	}

	for _, test := range tests {
		appDir := tempAppDir(t)
		args := append([]string{"--appdir", appDir}, test.args...)
		_, err := LoadConfig(args)
		if err == nil {
			t.Fatalf("TestLoadConfigErrors: %s: LoadConfig unexpectedly succeeded", test.name)
		}
	}
}

func TestResolveNetwork(t *testing.T) {
	networkFlags := &NetworkFlags{}
	err := networkFlags.ResolveNetwork(nil)
	if err != nil {
		t.Fatalf("TestResolveNetwork: ResolveNetwork: %s", err)
	}
	if networkFlags.NetParams().Name != "mainnet" {
		t.Fatalf("TestResolveNetwork: got network %s, want mainnet", networkFlags.NetParams().Name)
	}

	networkFlags = &NetworkFlags{DevNet: true, UnitTest: true}
	err = networkFlags.ResolveNetwork(nil)
	if err == nil {
		t.Fatalf("TestResolveNetwork: ResolveNetwork accepted two networks")
	}
}
