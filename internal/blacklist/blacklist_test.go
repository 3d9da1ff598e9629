// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package blacklist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/streamchaser/internal/config"
	"github.com/tomtom215/streamchaser/internal/metrics"
)

func newFileSet(t *testing.T, content string) *FileSet {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blacklist.txt")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write blacklist: %v", err)
		}
	}
	set, err := NewFileSet(path)
	if err != nil {
		t.Fatalf("NewFileSet() error = %v", err)
	}
	return set
}

func newBadgerSet(t *testing.T) *BadgerSet {
	t.Helper()
	set, err := OpenBadgerSet(filepath.Join(t.TempDir(), "badger"))
	if err != nil {
		t.Fatalf("OpenBadgerSet() error = %v", err)
	}
	t.Cleanup(func() { _ = set.Close() })
	return set
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

// setContract runs the behavior every backend must share.
func setContract(t *testing.T, set Set) {
	ctx := context.Background()

	ids, err := set.List(ctx)
	if err != nil || len(ids) != 0 {
		t.Fatalf("List() on empty set = %v, %v", ids, err)
	}

	added, err := set.Add(ctx, "m550")
	if err != nil || !added {
		t.Fatalf("Add(m550) = %v, %v; want true, nil", added, err)
	}
	added, err = set.Add(ctx, " m550 ")
	if err != nil || added {
		t.Fatalf("second Add(m550) = %v, %v; want false, nil", added, err)
	}
	if _, err := set.Add(ctx, "t1399"); err != nil {
		t.Fatal(err)
	}

	ok, err := set.Contains(ctx, "t1399")
	if err != nil || !ok {
		t.Errorf("Contains(t1399) = %v, %v", ok, err)
	}
	ok, _ = set.Contains(ctx, "m1")
	if ok {
		t.Error("Contains(m1) = true, want false")
	}

	ids, err = set.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Errorf("List() = %v, want 2 ids", ids)
	}

	for _, bad := range []string{"", "   ", "m1\nm2"} {
		if _, err := set.Add(ctx, bad); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Add(%q) error = %v, want ErrInvalidID", bad, err)
		}
	}
}

func TestFileSet_Contract(t *testing.T) {
	setContract(t, newFileSet(t, ""))
}

func TestBadgerSet_Contract(t *testing.T) {
	setContract(t, newBadgerSet(t))
}

func TestFileSet_ExistingIDNotDuplicated(t *testing.T) {
	set := newFileSet(t, "m1\nm2\n")

	added, err := set.Add(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if added {
		t.Error("Add(m1) = true, want false")
	}
	if got := readFile(t, set.Path()); got != "m1\nm2\n" {
		t.Errorf("file = %q, want unchanged", got)
	}
}

func TestFileSet_AppendsAfterMissingNewline(t *testing.T) {
	set := newFileSet(t, "m1\nm2")

	if _, err := set.Add(context.Background(), "m3"); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, set.Path()); got != "m1\nm2\nm3\n" {
		t.Errorf("file = %q", got)
	}
}

func TestFileSet_ListParsing(t *testing.T) {
	set := newFileSet(t, "m1\r\n\n  t2  \nm1\n")

	ids, err := set.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"m1", "t2"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("List() = %v, want %v", ids, want)
	}
}

func TestFileSet_MissingFileIsEmpty(t *testing.T) {
	set := newFileSet(t, "")
	if _, err := os.Stat(set.Path()); !os.IsNotExist(err) {
		t.Fatalf("file should not exist yet: %v", err)
	}
	ids, err := set.List(context.Background())
	if err != nil || len(ids) != 0 {
		t.Errorf("List() = %v, %v", ids, err)
	}
}

func TestFileSet_ConcurrentAddWritesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.txt")

	// Two sets on the same path behave like two processes sharing the file.
	first, _ := NewFileSet(path)
	second, _ := NewFileSet(path)

	var wg sync.WaitGroup
	var mu sync.Mutex
	addedCount := 0
	for i := 0; i < 20; i++ {
		set := first
		if i%2 == 1 {
			set = second
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := set.Add(context.Background(), "m42")
			if err != nil {
				t.Errorf("Add() error = %v", err)
				return
			}
			if added {
				mu.Lock()
				addedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if addedCount != 1 {
		t.Errorf("added reported %d times, want 1", addedCount)
	}
	if got := strings.Count(readFile(t, path), "m42\n"); got != 1 {
		t.Errorf("m42 written %d times, want 1", got)
	}
}

func TestBadgerSet_ConcurrentAdd(t *testing.T) {
	set := newBadgerSet(t)

	var wg sync.WaitGroup
	results := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := set.Add(context.Background(), "t7")
			if err != nil {
				t.Errorf("Add() error = %v", err)
			}
			results <- added
		}()
	}
	wg.Wait()
	close(results)

	n := 0
	for added := range results {
		if added {
			n++
		}
	}
	if n != 1 {
		t.Errorf("added reported %d times, want 1", n)
	}
}

func TestBadgerSet_Persists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")
	ctx := context.Background()

	set, err := OpenBadgerSet(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := set.Add(ctx, fmt.Sprintf("m%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := set.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBadgerSet(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	ids, err := reopened.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"m0", "m1", "m2"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("List() = %v, want %v", ids, want)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	fileSet, err := Open(&config.BlacklistConfig{Backend: "file", Path: filepath.Join(dir, "b.txt")})
	if err != nil {
		t.Fatalf("Open(file) error = %v", err)
	}
	if fileSet.Backend() != BackendFile {
		t.Errorf("Backend() = %q", fileSet.Backend())
	}

	badgerSet, err := Open(&config.BlacklistConfig{Backend: "BADGER", BadgerDir: filepath.Join(dir, "kv")})
	if err != nil {
		t.Fatalf("Open(badger) error = %v", err)
	}
	defer badgerSet.Close()
	if badgerSet.Backend() != BackendBadger {
		t.Errorf("Backend() = %q", badgerSet.Backend())
	}

	if _, err := Open(&config.BlacklistConfig{Backend: "redis"}); err == nil {
		t.Error("Open(redis) should fail")
	}
}

func TestAddMetrics(t *testing.T) {
	set := newFileSet(t, "")
	before := testutil.ToFloat64(metrics.BlacklistAdds.WithLabelValues(BackendFile, "duplicate"))

	_, _ = set.Add(context.Background(), "m9")
	_, _ = set.Add(context.Background(), "m9")

	after := testutil.ToFloat64(metrics.BlacklistAdds.WithLabelValues(BackendFile, "duplicate"))
	if after-before != 1 {
		t.Errorf("duplicate counter delta = %v, want 1", after-before)
	}
}
