package repository

import (
	"context"
	"testing"
)

func TestRunMigrationsFreshAndIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	version, err := CurrentSchemaVersion(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if version != SchemaVersion {
		t.Errorf("schema version = %d, want %d", version, SchemaVersion)
	}

	if err := RunMigrations(ctx, db, DialectSQLite, nil); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}

	counts, err := TableCounts(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	for _, table := range ManagedTables() {
		if n, ok := counts[table]; !ok || n != 0 {
			t.Errorf("table %s count = %d (present %v)", table, n, ok)
		}
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b IN (?,?)"
	if got := DialectSQLite.Rebind(q); got != q {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
	want := "SELECT * FROM t WHERE a = $1 AND b IN ($2,$3)"
	if got := DialectPostgres.Rebind(q); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
	if got := buildPlaceholders(3); got != "?,?,?" {
		t.Errorf("buildPlaceholders(3) = %q", got)
	}
}
