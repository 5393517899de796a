package timekey

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGojaKeyer_ReferenceMatchesGo(t *testing.T) {
	k, err := NewGojaKeyer(ReferenceScript)
	if err != nil {
		t.Fatalf("NewGojaKeyer: %v", err)
	}
	for _, ts := range []int64{0, 1, 1424747397, 1700000000, 2147483647, 4294967295} {
		got, err := k.Key(ts)
		if err != nil {
			t.Fatalf("Key(%d): %v", ts, err)
		}
		if want := DeriveToken(ts); got != want {
			t.Errorf("goja Key(%d) = %d, want %d", ts, got, want)
		}
	}
}

func TestGojaKeyer_SignedResult(t *testing.T) {
	k, err := NewGojaKeyer(`function calcTimeKey(ts) { return ts | 0x80000000; }`)
	if err != nil {
		t.Fatalf("NewGojaKeyer: %v", err)
	}
	got, err := k.Key(1)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if got != 0x80000001 {
		t.Errorf("Expected %#x, got %#x", 0x80000001, got)
	}
}

func TestGojaKeyer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		callErr bool
	}{
		{name: "syntax error", src: `function calcTimeKey(ts) {`},
		{name: "missing function", src: `var x = 1;`},
		{name: "not a function", src: `var calcTimeKey = 3;`},
		{name: "string result", src: `function calcTimeKey(ts) { return "abc"; }`, callErr: true},
		{name: "undefined result", src: `function calcTimeKey(ts) {}`, callErr: true},
		{name: "fractional result", src: `function calcTimeKey(ts) { return 1.5; }`, callErr: true},
		{name: "throws", src: `function calcTimeKey(ts) { throw new Error("rotated"); }`, callErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := NewGojaKeyer(tt.src)
			if !tt.callErr {
				if err == nil {
					t.Fatal("Expected construction error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected construction to succeed, got %v", err)
			}
			if _, err := k.Key(1); err == nil {
				t.Error("Expected Key error, got nil")
			}
		})
	}
}

func TestLoadGojaKeyer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tkey.js")
	if err := os.WriteFile(path, []byte(ReferenceScript), 0o644); err != nil {
		t.Fatal(err)
	}
	k, err := LoadGojaKeyer(path)
	if err != nil {
		t.Fatalf("LoadGojaKeyer: %v", err)
	}
	if got, _ := k.Key(0); got != 1691541961 {
		t.Errorf("Expected 1691541961, got %d", got)
	}
	if _, err := LoadGojaKeyer(filepath.Join(t.TempDir(), "missing.js")); err == nil {
		t.Error("Expected read error")
	}
}
