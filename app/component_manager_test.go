package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulordnet/ulordd/chaincfg"
	"github.com/ulordnet/ulordd/infrastructure/config"
)

func testConfig(t *testing.T, dbType string, cacheSize int, importFile string) *config.Config {
	dataDir, err := os.MkdirTemp("", "ulordd-app")
	if err != nil {
		t.Fatalf("Failed creating a temporary directory: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dataDir) })

	cfg := &config.Config{
		Flags: &config.Flags{
			DbType:       dbType,
			CacheSize:    cacheSize,
			ImportFile:   importFile,
			NetworkFlags: config.NetworkFlags{UnitTest: true},
		},
		DataDir: dataDir,
	}
	err = cfg.ResolveNetwork(nil)
	if err != nil {
		t.Fatalf("ResolveNetwork: %s", err)
	}
	return cfg
}

func writeImportFile(t *testing.T, dir string, params *chaincfg.Params, count int) string {
	var buf bytes.Buffer
	for _, block := range mineTestBlocks(t, params, count) {
		writeMessages(t, &buf, params.Net, block)
	}
	importFile := filepath.Join(dir, "blocks.dat")
	err := os.WriteFile(importFile, buf.Bytes(), 0600)
	if err != nil {
		t.Fatalf("WriteFile: %s", err)
	}
	return importFile
}

func TestComponentManagerPersistsImport(t *testing.T) {
	tests := []struct {
		dbType    string
		cacheSize int
	}{
		{dbType: "leveldb", cacheSize: 0},
		{dbType: "leveldb", cacheSize: 16},
		{dbType: "bolt", cacheSize: 0},
		{dbType: "bolt", cacheSize: 16},
	}

	for _, test := range tests {
		cfg := testConfig(t, test.dbType, test.cacheSize, "")
		cfg.ImportFile = writeImportFile(t, cfg.DataDir, cfg.NetParams(), 5)

		componentManager, err := NewComponentManager(cfg)
		if err != nil {
			t.Fatalf("TestComponentManagerPersistsImport: %s: NewComponentManager: %+v", test.dbType, err)
		}
		err = componentManager.Run(context.Background())
		if err != nil {
			t.Fatalf("TestComponentManagerPersistsImport: %s: Run: %+v", test.dbType, err)
		}
		if componentManager.ChainState().BestChainHeight() != 5 {
			t.Fatalf("TestComponentManagerPersistsImport: %s: got height %d, want 5",
				test.dbType, componentManager.ChainState().BestChainHeight())
		}
		componentManager.Stop()

		_, err = os.Stat(versionFilePath(cfg.DataDir))
		if err != nil {
			t.Fatalf("TestComponentManagerPersistsImport: %s: the database version file is missing: %s",
				test.dbType, err)
		}

		reopened, err := NewComponentManager(cfg)
		if err != nil {
			t.Fatalf("TestComponentManagerPersistsImport: %s: reopening: %+v", test.dbType, err)
		}
		if reopened.ChainState().BestChainHeight() != 5 {
			t.Fatalf("TestComponentManagerPersistsImport: %s: got height %d after reopening, want 5",
				test.dbType, reopened.ChainState().BestChainHeight())
		}

		// Importing the same file again accepts every block without
		// changing the head.
		err = reopened.Run(context.Background())
		if err != nil {
			t.Fatalf("TestComponentManagerPersistsImport: %s: second Run: %+v", test.dbType, err)
		}
		if reopened.ChainState().BestChainHeight() != 5 {
			t.Fatalf("TestComponentManagerPersistsImport: %s: got height %d after importing again, want 5",
				test.dbType, reopened.ChainState().BestChainHeight())
		}
		reopened.Stop()
	}
}

func TestComponentManagerMemoryStore(t *testing.T) {
	cfg := testConfig(t, "memory", 0, "")
	cfg.HeadersOnly = true
	cfg.ImportFile = writeImportFile(t, cfg.DataDir, cfg.NetParams(), 3)

	componentManager, err := NewComponentManager(cfg)
	if err != nil {
		t.Fatalf("TestComponentManagerMemoryStore: NewComponentManager: %+v", err)
	}
	defer componentManager.Stop()

	err = componentManager.Run(context.Background())
	if err != nil {
		t.Fatalf("TestComponentManagerMemoryStore: Run: %+v", err)
	}
	if componentManager.ChainState().BestChainHeight() != 3 {
		t.Fatalf("TestComponentManagerMemoryStore: got height %d, want 3",
			componentManager.ChainState().BestChainHeight())
	}
	_, err = os.Stat(versionFilePath(cfg.DataDir))
	if !os.IsNotExist(err) {
		t.Fatalf("TestComponentManagerMemoryStore: the memory store wrote a database version file")
	}
}

func TestComponentManagerMissingImportFile(t *testing.T) {
	cfg := testConfig(t, "memory", 0, filepath.Join(os.TempDir(), "ulordd-no-such-file.dat"))

	componentManager, err := NewComponentManager(cfg)
	if err != nil {
		t.Fatalf("TestComponentManagerMissingImportFile: NewComponentManager: %+v", err)
	}
	defer componentManager.Stop()

	err = componentManager.Run(context.Background())
	if err == nil {
		t.Fatalf("TestComponentManagerMissingImportFile: Run succeeded without an import file")
	}
}

func TestDatabaseVersion(t *testing.T) {
	dbPath, err := os.MkdirTemp("", "ulordd-dbversion")
	if err != nil {
		t.Fatalf("Failed creating a temporary directory: %v", err)
	}
	defer os.RemoveAll(dbPath)

	exists, err := checkDatabaseVersion(dbPath)
	if err != nil || exists {
		t.Fatalf("TestDatabaseVersion: got (%t, %v) for a new database, want (false, nil)", exists, err)
	}

	err = createDatabaseVersionFile(dbPath)
	if err != nil {
		t.Fatalf("TestDatabaseVersion: createDatabaseVersionFile: %s", err)
	}
	exists, err = checkDatabaseVersion(dbPath)
	if err != nil || !exists {
		t.Fatalf("TestDatabaseVersion: got (%t, %v) after creating the file, want (true, nil)", exists, err)
	}

	err = os.WriteFile(versionFilePath(dbPath), []byte("7"), 0600)
	if err != nil {
		t.Fatalf("TestDatabaseVersion: WriteFile: %s", err)
	}
	exists, err = checkDatabaseVersion(dbPath)
	if err == nil || !exists {
		t.Fatalf("TestDatabaseVersion: got (%t, %v) for an unknown version, want an error", exists, err)
	}
}
