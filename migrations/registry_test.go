package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"testing"
	"testing/fstest"
)

func TestFilesystems_ExposesBothDialects(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("resolve filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected postgres and sqlite filesystems, got %d", len(filesystems))
	}

	byDialect := map[string]FilesystemSpec{}
	for _, spec := range filesystems {
		byDialect[spec.Dialect] = spec
	}
	for _, dialect := range []string{DialectPostgres, DialectSQLite} {
		spec, ok := byDialect[dialect]
		if !ok {
			t.Fatalf("missing %s filesystem", dialect)
		}
		matches, err := fs.Glob(spec.FS, "*.up.sql")
		if err != nil {
			t.Fatalf("glob %s: %v", dialect, err)
		}
		if len(matches) == 0 {
			t.Fatalf("expected up migrations for %s", dialect)
		}
	}
}

func TestRegister_InvokesCallbackPerTarget(t *testing.T) {
	seen := map[string]string{}
	reg, err := Register(context.Background(), func(_ context.Context, dialect string, label string, fsys fs.FS) error {
		if fsys == nil {
			return fmt.Errorf("nil filesystem for %s", dialect)
		}
		seen[dialect] = label
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.SourceLabel != "conversation-relay" {
		t.Fatalf("unexpected source label %q", reg.SourceLabel)
	}
	if len(seen) != 2 {
		t.Fatalf("expected both dialects registered, got %#v", seen)
	}
}

func TestRegister_RespectsValidationTargets(t *testing.T) {
	seen := map[string]bool{}
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		seen[dialect] = true
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if seen[DialectPostgres] {
		t.Fatalf("postgres should be skipped when only sqlite is targeted")
	}
	if !seen[DialectSQLite] {
		t.Fatalf("expected sqlite registration")
	}
}

func TestRegister_RequiresCallback(t *testing.T) {
	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil register function")
	}
}

func TestFilesystems_AcceptsFlatSource(t *testing.T) {
	source := fstest.MapFS{
		"0001_init.up.sql":          {Data: []byte("CREATE TABLE t (id TEXT);")},
		"sqlite/0001_init.up.sql":   {Data: []byte("CREATE TABLE t (id TEXT);")},
		"sqlite/0001_init.down.sql": {Data: []byte("DROP TABLE t;")},
	}
	filesystems, err := Filesystems(source)
	if err != nil {
		t.Fatalf("resolve flat source: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected two filesystems, got %d", len(filesystems))
	}
}
