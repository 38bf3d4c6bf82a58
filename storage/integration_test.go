package storage

import (
	"os"
	"testing"

	"github.com/leedaaye/redink-ziyong/storage/model"
)

// TestSQLiteConnection tests connecting to a SQLite database
func TestSQLiteConnection(t *testing.T) {
	// Skip if not running integration tests
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	config := Config{
		Driver:  DriverSQLite,
		DataDir: t.TempDir(),
	}

	db, err := Connect(config)
	if err != nil {
		t.Fatalf("Failed to connect to SQLite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get SQL DB: %v", err)
	}

	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("Failed to ping SQLite database: %v", err)
	}
}

// TestMySQLConnection tests connecting to a MySQL database
func TestMySQLConnection(t *testing.T) {
	// Skip if not running integration tests
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	// Skip if MySQL DSN is not provided
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("Skipping MySQL test. Set MYSQL_DSN environment variable")
	}

	config := Config{
		Driver: DriverMySQL,
		DSN:    dsn,
	}

	db, err := Connect(config)
	if err != nil {
		t.Fatalf("Failed to connect to MySQL database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get SQL DB: %v", err)
	}

	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("Failed to ping MySQL database: %v", err)
	}
}

// TestPostgresConnection tests connecting to a PostgreSQL database
func TestPostgresConnection(t *testing.T) {
	// Skip if not running integration tests
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	// Skip if PostgreSQL DSN is not provided
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL test. Set POSTGRES_DSN environment variable")
	}

	config := Config{
		Driver: DriverPostgres,
		DSN:    dsn,
	}

	db, err := Connect(config)
	if err != nil {
		t.Fatalf("Failed to connect to PostgreSQL database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get SQL DB: %v", err)
	}

	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("Failed to ping PostgreSQL database: %v", err)
	}
}

// TestSQLiteKeyValueStorage exercises the scoped key-value accessor
func TestSQLiteKeyValueStorage(t *testing.T) {
	// Skip if not running integration tests
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	config := Config{
		Driver:       DriverSQLite,
		DataDir:      t.TempDir(),
		PasswordHash: testHashParams,
	}

	warehouse, err := NewStorage(config)
	if err != nil {
		t.Fatalf("Failed to create SQLite storage: %v", err)
	}
	kv := warehouse.KeyValue()

	if err = kv.SetAny(model.KeyValueScopeGlobal, "motd", "hello"); err != nil {
		t.Fatalf("SetAny failed: %v", err)
	}
	var got string
	found, err := kv.GetAs(model.KeyValueScopeGlobal, "motd", &got)
	if err != nil {
		t.Fatalf("GetAs failed: %v", err)
	}
	if !found || got != "hello" {
		t.Errorf("GetAs returned (%v, %q), want (true, \"hello\")", found, got)
	}

	// global and admin scope must not shadow each other
	if found, _ = kv.GetAs(model.KeyValueScopeGlobal, model.KeyValueKeyAdminPasswordHash, &got); found {
		t.Error("admin credential is visible in the global scope")
	}

	if err = kv.Delete(model.KeyValueScopeGlobal, "motd"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if found, _ = kv.GetAs(model.KeyValueScopeGlobal, "motd", &got); found {
		t.Error("deleted key is still readable")
	}
	// deleting a missing key is not an error
	if err = kv.Delete(model.KeyValueScopeGlobal, "motd"); err != nil {
		t.Errorf("Delete of a missing key failed: %v", err)
	}
}

// TestSQLiteUsersStorage runs the whole user lifecycle against the SQLite
// backend to confirm it matches the file backend's semantics
func TestSQLiteUsersStorage(t *testing.T) {
	// Skip if not running integration tests
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	config := Config{
		Driver:       DriverSQLite,
		DataDir:      t.TempDir(),
		PasswordHash: testHashParams,
	}

	warehouse, err := NewStorage(config)
	if err != nil {
		t.Fatalf("Failed to create SQLite storage: %v", err)
	}
	users := warehouse.UsersStorage()

	ok, err := users.VerifyAdminPassword(DefaultAdminPassword)
	if err != nil {
		t.Fatalf("VerifyAdminPassword failed: %v", err)
	}
	if !ok {
		t.Error("fresh store did not accept the default admin password")
	}

	u, err := users.Create("alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err = users.Create("alice"); err == nil {
		t.Error("duplicate username was accepted")
	}

	id, err := users.ValidateToken(u.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if id == nil || id.Username != "alice" {
		t.Errorf("ValidateToken returned %+v", id)
	}

	if enabled, ok, _ := users.Toggle(u.ID); ok && enabled {
		t.Error("first toggle did not disable the user")
	}
	if id, _ = users.ValidateToken(u.AccessToken); id != nil {
		t.Error("token of a disabled user was accepted")
	}

	deleted, err := users.Delete(u.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Error("Delete did not find the user")
	}
}
