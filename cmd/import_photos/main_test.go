package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photo-catalog/catalog"
)

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.PNG", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	mgr := catalog.NewManager(catalog.Seed("", nil), nil)
	u, _ := mgr.Catalog().User(catalog.StockUsername)

	var out bytes.Buffer
	sum, err := importDir(mgr, u, "Holiday", dir, &out)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if sum.Imported != 2 || sum.Duplicates != 0 || sum.Errors != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if !strings.Contains(out.String(), "Created album 'Holiday'.") {
		t.Fatalf("album creation not reported:\n%s", out.String())
	}

	sum, err = importDir(mgr, u, "holiday", dir, &out)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if sum.Imported != 0 || sum.Duplicates != 2 {
		t.Fatalf("second run should only find duplicates, got %+v", sum)
	}

	a, err := mgr.Album(u, "Holiday")
	if err != nil {
		t.Fatalf("album lookup: %v", err)
	}
	if a.Size() != 2 {
		t.Fatalf("album size %d, want 2", a.Size())
	}
}

func TestImportDirMissing(t *testing.T) {
	mgr := catalog.NewManager(catalog.Seed("", nil), nil)
	u, _ := mgr.Catalog().User(catalog.StockUsername)
	if _, err := importDir(mgr, u, "x", filepath.Join(t.TempDir(), "absent"), &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestImportUser(t *testing.T) {
	mgr := catalog.NewManager(catalog.Seed("", nil), nil)
	if _, err := mgr.CreateUser("locked", "secret"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess := catalog.NewSession(mgr, catalog.SessionOptions{})

	_, err := importUser(mgr, sess, "locked")
	if err == nil || !strings.Contains(err.Error(), "password protected") {
		t.Fatalf("password-protected account: got %v", err)
	}
	if _, err := importUser(mgr, sess, "admin"); !errors.Is(err, catalog.ErrForbidden) {
		t.Fatalf("administrator: want ErrForbidden, got %v", err)
	}
	if _, err := importUser(mgr, sess, "ghost"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("unknown account: want ErrNotFound, got %v", err)
	}
	u, err := importUser(mgr, sess, catalog.StockUsername)
	if err != nil || u.Username != catalog.StockUsername {
		t.Fatalf("stock: got %v, %v", u, err)
	}
}
