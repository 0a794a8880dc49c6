package database

import (
	"testing"
)

// TestMigrationsFS_ContainsExpectedFiles は埋め込みマイグレーションに
// up/downのペアが揃っていることを検証する。
func TestMigrationsFS_ContainsExpectedFiles(t *testing.T) {
	expected := []string{
		"migrations/000001_create_users.up.sql",
		"migrations/000001_create_users.down.sql",
		"migrations/000002_create_posts.up.sql",
		"migrations/000002_create_posts.down.sql",
	}

	for _, name := range expected {
		data, err := migrationsFS.ReadFile(name)
		if err != nil {
			t.Errorf("expected migration file %s: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("migration file %s is empty", name)
		}
	}
}
