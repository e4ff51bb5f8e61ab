package codec

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarshalIsDeterministic(t *testing.T) {
	v := map[string]int{"zeta": 3, "alpha": 1, "mid": 2}
	first, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := Marshal(map[string]int{"mid": 2, "alpha": 1, "zeta": 3})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("map encoding depends on insertion order")
		}
	}
	var back map[string]int
	if err := Unmarshal(first, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back["zeta"] != 3 {
		t.Errorf("decoded %v", back)
	}
}

func TestCompressShrinksRepetitiveText(t *testing.T) {
	text := []byte(strings.Repeat("ekonomi indonesia tumbuh pesat ", 200))
	compressed := Compress(text)
	if len(compressed) >= len(text) {
		t.Errorf("compressed %d bytes to %d", len(text), len(compressed))
	}
	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, text) {
		t.Error("decompressed bytes differ")
	}
	if _, err := Decompress([]byte("not zstd")); err == nil {
		t.Error("expected error for corrupt input")
	}
}
