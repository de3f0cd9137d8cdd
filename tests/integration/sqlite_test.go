//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/tordrt/schemadoc/internal/db"
)

func TestSQLiteImport(t *testing.T) {
	ctx := context.Background()

	path := os.Getenv("SQLITE_TEST_PATH")
	if path == "" {
		path = "testdata/testdb.sqlite"
	}
	if _, err := os.Stat(path); err != nil {
		t.Skipf("SQLite test database not found at %s", path)
	}

	imp, err := db.NewSQLiteImporter(ctx, path)
	if err != nil {
		t.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer imp.Close()

	doc, err := imp.Import(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to import schema: %v", err)
	}

	expectedEntities := []string{"users", "products", "orders", "order_items"}
	verifyEntitiesExist(t, doc, expectedEntities)

	users := doc.FindEntity("users")
	if users == nil {
		t.Fatal("users entity not found")
	}
	verifyPrimaryKey(t, users, []string{"id"})
	verifyFields(t, users, []string{"id", "username", "email", "created_at"})

	orders := doc.FindEntity("orders")
	if orders == nil {
		t.Fatal("orders entity not found")
	}
	verifyForeignKey(t, orders, "user_id", "users.id")
	verifyRelationship(t, doc, "users", "orders")
}

func TestSQLiteImportSpecificTables(t *testing.T) {
	ctx := context.Background()

	path := os.Getenv("SQLITE_TEST_PATH")
	if path == "" {
		path = "testdata/testdb.sqlite"
	}
	if _, err := os.Stat(path); err != nil {
		t.Skipf("SQLite test database not found at %s", path)
	}

	imp, err := db.NewSQLiteImporter(ctx, path)
	if err != nil {
		t.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer imp.Close()

	doc, err := imp.Import(ctx, []string{"users"})
	if err != nil {
		t.Fatalf("Failed to import schema: %v", err)
	}
	verifyEntitiesExist(t, doc, []string{"users"})
}
