package sysgpio

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"periph.io/x/conn/v3/gpio"

	"ts7680ctl/errcode"
)

// fakeTree lays out a sysfs-like tree with the given lines already present.
func fakeTree(t *testing.T, lines ...int) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{"export", "unexport"} {
		if err := os.WriteFile(filepath.Join(root, f), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, n := range lines {
		dir := filepath.Join(root, "gpio"+strconv.Itoa(n))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		for _, f := range []string{"direction", "value"} {
			if err := os.WriteFile(filepath.Join(dir, f), []byte("0\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return root
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestWithExportsAndUnexports(t *testing.T) {
	root := fakeTree(t, 44)
	s := New(root)
	var lvl gpio.Level
	err := s.With(44, func() error {
		var err error
		lvl, err = s.Read(44)
		return err
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if lvl != gpio.Low {
		t.Fatalf("level = %v", lvl)
	}
	if got := readFile(t, filepath.Join(root, "export")); got != "44" {
		t.Fatalf("export = %q", got)
	}
	if got := readFile(t, filepath.Join(root, "unexport")); got != "44" {
		t.Fatalf("unexport = %q", got)
	}
}

func TestWriteAndReadBack(t *testing.T) {
	root := fakeTree(t, 12)
	s := New(root)
	if err := s.Write(12, gpio.High); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := readFile(t, filepath.Join(root, "gpio12", "value")); got != "1" {
		t.Fatalf("value = %q", got)
	}
	lvl, err := s.Read(12)
	if err != nil || lvl != gpio.High {
		t.Fatalf("Read = %v, %v", lvl, err)
	}
}

func TestDirectionIn(t *testing.T) {
	root := fakeTree(t, 7)
	if err := New(root).SetDirection(7, In); err != nil {
		t.Fatalf("SetDirection: %v", err)
	}
	if got := readFile(t, filepath.Join(root, "gpio7", "direction")); got != "in" {
		t.Fatalf("direction = %q", got)
	}
}

func TestMissingLine(t *testing.T) {
	root := fakeTree(t)
	s := New(root)
	err := s.With(5, func() error { return s.Write(5, gpio.High) })
	if errcode.Of(err) != errcode.IO {
		t.Fatalf("code = %v", errcode.Of(err))
	}
	// The unexport still ran.
	if got := readFile(t, filepath.Join(root, "unexport")); got != "5" {
		t.Fatalf("unexport = %q", got)
	}
}

func TestReadErrorNamesPathOnce(t *testing.T) {
	root := fakeTree(t)
	_, err := New(root).Read(9)
	if errcode.Of(err) != errcode.IO {
		t.Fatalf("code = %v", errcode.Of(err))
	}
	p := filepath.Join(root, "gpio9", "value")
	if n := strings.Count(err.Error(), p); n != 1 {
		t.Fatalf("path named %d times in %q", n, err.Error())
	}
}
