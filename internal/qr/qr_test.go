package qr

import (
	"bytes"
	"image/png"
	"testing"
)

func TestMenuURL(t *testing.T) {
	tests := []struct {
		origin string
		table  int
		want   string
	}{
		{"https://eat.example.com", 7, "https://eat.example.com/menu?table=7"},
		{"https://eat.example.com/", 12, "https://eat.example.com/menu?table=12"},
		{"http://localhost:5173", 1, "http://localhost:5173/menu?table=1"},
	}
	for _, tc := range tests {
		if got := MenuURL(tc.origin, tc.table); got != tc.want {
			t.Errorf("MenuURL(%q, %d) = %q, want %q", tc.origin, tc.table, got, tc.want)
		}
	}
}

func TestMenuURL_UniquePerTable(t *testing.T) {
	seen := map[string]int{}
	for table := 1; table <= 20; table++ {
		u := MenuURL("https://eat.example.com", table)
		if prev, ok := seen[u]; ok {
			t.Fatalf("tables %d and %d share %s", prev, table, u)
		}
		seen[u] = table
	}
}

func TestPNG(t *testing.T) {
	data, err := PNG(MenuURL("https://eat.example.com", 3), DefaultSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DefaultSize || b.Dy() != DefaultSize {
		t.Errorf("expected %dx%d, got %dx%d", DefaultSize, DefaultSize, b.Dx(), b.Dy())
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(9); got != "table-9-qr-code.png" {
		t.Errorf("unexpected file name %q", got)
	}
}
