// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a, err := Key("run", "planner", []float64{0, 1})
	if err != nil {
		t.Fatalf("Key(...) error = %v, want nil", err)
	}
	b, _ := Key("run", "planner", []float64{0, 1})
	c, _ := Key("run", "block", []float64{0, 1})

	if a != b {
		t.Errorf("Key(...) = %q and %q for equal parts, want equal", a, b)
	}
	if a == c {
		t.Errorf("Key(...) = %q for different parts, want different", a)
	}
	if !strings.HasPrefix(a, "run:") || len(a) != len("run:")+64 {
		t.Errorf("Key(...) = %q, want run: and 64 hex digits", a)
	}

	if _, err := Key("run", func() {}); err == nil {
		t.Errorf("Key(func) error = nil, want non-nil")
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("Get() = _, %v, %v, want miss", ok, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Errorf("Get(missing) = _, %v, %v, want miss", ok, err)
	}

	if err := c.Set(ctx, "k", []byte("value"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(data) != "value" {
		t.Errorf("Get(k) = %q, %v, %v, want \"value\", true, nil", data, ok, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Errorf("Get(k) after Delete hit, want miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error = %v, want nil", err)
	}
}

func TestFileCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Errorf("Get(expired) hit, want miss")
	}
}

func TestFileCache_CorruptEntry(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"foreign file", []byte("{not an entry}")},
		{"short header", []byte("FPC1\x00")},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c, err := NewFileCache(t.TempDir())
			if err != nil {
				t.Fatalf("NewFileCache() error = %v", err)
			}

			path := c.(*FileCache).path("k")
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, tt.raw, 0o644); err != nil {
				t.Fatal(err)
			}
			if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
				t.Errorf("Get(corrupt) = _, %v, %v, want miss", ok, err)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Errorf("corrupt entry was not removed")
			}
		})
	}
}

func TestFileCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	for _, v := range []string{"first", "second"} {
		if err := c.Set(ctx, "k", []byte(v), time.Hour); err != nil {
			t.Fatalf("Set(%q) error = %v", v, err)
		}
	}
	data, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(data) != "second" {
		t.Errorf("Get(k) = %q, %v, %v, want \"second\", true, nil", data, ok, err)
	}

	// Only the entry itself is left behind, no temporary files.
	path := c.(*FileCache).path("k")
	files, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("os.ReadDir(...) error = %v", err)
	}
	if len(files) != 1 || files[0].Name() != filepath.Base(path) {
		t.Errorf("entry directory holds %v, want only %s", files, filepath.Base(path))
	}
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "http://localhost", "fp:"); err == nil {
		t.Errorf("NewRedisCache(invalid url) error = nil, want non-nil")
	}
}
