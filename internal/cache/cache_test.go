package cache

import (
	"testing"
)

func TestKeyStable(t *testing.T) {
	a := Key([]byte("exit(0)"))
	b := Key([]byte("exit(0)"))
	if a != b {
		t.Error("same source must produce the same key")
	}
	if Key([]byte("exit(1)")) == a {
		t.Error("different source must produce a different key")
	}
}

func TestStoreAndLookup(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %s", err)
	}
	defer c.Close()

	key := Key([]byte("var(x, 1) exit(x)"))

	if _, hit, err := c.Lookup(key); err != nil || hit {
		t.Fatalf("empty cache lookup = hit=%v err=%v", hit, err)
	}

	if err := c.Store(key, "build-1", "# asm\n"); err != nil {
		t.Fatalf("Store: %s", err)
	}

	asm, hit, err := c.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup: %s", err)
	}
	if !hit || asm != "# asm\n" {
		t.Errorf("Lookup = (%q, %v)", asm, hit)
	}
}

func TestStoreReplaces(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %s", err)
	}
	defer c.Close()

	key := Key([]byte("exit(0)"))
	if err := c.Store(key, "build-1", "old"); err != nil {
		t.Fatal(err)
	}
	if err := c.Store(key, "build-2", "new"); err != nil {
		t.Fatal(err)
	}

	asm, hit, err := c.Lookup(key)
	if err != nil || !hit {
		t.Fatalf("Lookup = hit=%v err=%v", hit, err)
	}
	if asm != "new" {
		t.Errorf("Lookup = %q, want the replacement", asm)
	}
}
