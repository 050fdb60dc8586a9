package httputil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type buyer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCache_GetSet(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	want := []buyer{{ID: "b-1", Name: "Acme Insurance"}, {ID: "b-2", Name: "Globex"}}
	if err := c.Set("buyers", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got []buyer
	ok, err := c.Get("buyers", &got)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v; want true, nil", ok, err)
	}
	if len(got) != 2 || got[1].Name != "Globex" {
		t.Errorf("Get = %+v", got)
	}

	tmps, _ := filepath.Glob(filepath.Join(c.Dir(), "*.tmp"))
	if len(tmps) != 0 {
		t.Errorf("temp files left: %v", tmps)
	}
}

func TestCache_Miss(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	var got []buyer
	ok, err := c.Get("campaigns", &got)
	if err != nil || ok {
		t.Errorf("Get = %v, %v; want false, nil", ok, err)
	}
}

func TestCache_Expiration(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Minute)
	if err := c.Set("buyers", []buyer{{ID: "b-1"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Age the entry past the TTL.
	old := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(c.keyPath("buyers"), old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	var got []buyer
	ok, err := c.Get("buyers", &got)
	if !errors.Is(err, ErrExpired) || ok {
		t.Errorf("Get = %v, %v; want false, ErrExpired", ok, err)
	}
}

func TestCache_NoTTL(t *testing.T) {
	c, _ := NewCache(t.TempDir(), 0)
	_ = c.Set("k", "v")
	old := time.Now().Add(-365 * 24 * time.Hour)
	_ = os.Chtimes(c.keyPath("k"), old, old)

	var got string
	if ok, err := c.Get("k", &got); !ok || err != nil {
		t.Errorf("Get = %v, %v; want hit", ok, err)
	}
}

func TestCache_Delete(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	_ = c.Set("k", "v")
	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Delete("k"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	var got string
	if ok, _ := c.Get("k", &got); ok {
		t.Error("entry still present")
	}
}

func TestCache_CorruptEntry(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	if err := os.WriteFile(c.keyPath("k"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	var got string
	if ok, err := c.Get("k", &got); ok || err == nil {
		t.Errorf("Get = %v, %v; want decode error", ok, err)
	}
}

func TestCache_Namespace(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)

	tests := []struct {
		name  string
		write *Cache
		read  *Cache
		hit   bool
	}{
		{"Same", c.Namespace("lookup:"), c.Namespace("lookup:"), true},
		{"Different", c.Namespace("lookup:"), c.Namespace("other:"), false},
		{"Chained", c.Namespace("a:").Namespace("b:"), c.Namespace("a:b:"), true},
		{"PartialChain", c.Namespace("x:").Namespace("y:"), c.Namespace("x:"), false},
		{"EmptyPrefix", c.Namespace(""), c, true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := string(rune('a' + i))
			if err := tt.write.Set(key, tt.name); err != nil {
				t.Fatalf("Set: %v", err)
			}
			var got string
			ok, err := tt.read.Get(key, &got)
			if err != nil || ok != tt.hit {
				t.Errorf("Get = %v, %v; want %v", ok, err, tt.hit)
			}
			if ok && got != tt.name {
				t.Errorf("Get value = %q", got)
			}
		})
	}

	ns := c.Namespace("lookup:")
	if ns.Dir() != c.Dir() || ns.TTL() != c.TTL() {
		t.Error("namespace should share dir and TTL")
	}
}
