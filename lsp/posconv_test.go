package lsp

import "testing"

func TestByteOffsetFromLSP_UTF16_ASCII(t *testing.T) {
	t.Parallel()

	// Line 0: "hello\n" (bytes 0-5, 6 total including newline)
	// Line 1: "world\n" (bytes 6-11)
	content := []byte("hello\nworld\n")

	tests := []struct {
		name     string
		line     int
		char     int
		wantByte int
	}{
		{"start of file", 0, 0, 0},
		{"middle of line 0", 0, 2, 2},
		{"end of line 0 content", 0, 5, 5},
		{"start of line 1", 1, 0, 6},
		{"middle of line 1", 1, 2, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ByteOffsetFromLSP(content, tt.line, tt.char, PositionEncodingUTF16)
			if !ok {
				t.Fatal("ByteOffsetFromLSP returned ok=false")
			}
			if got != tt.wantByte {
				t.Errorf("ByteOffsetFromLSP(line=%d, char=%d) = %d; want %d",
					tt.line, tt.char, got, tt.wantByte)
			}
		})
	}
}

func TestByteOffsetFromLSP_UTF16_BMP(t *testing.T) {
	t.Parallel()

	// "héllo" = h(1) + é(2) + l(1) + l(1) + o(1) = 6 bytes
	// UTF-16: h(1) + é(1) + l(1) + l(1) + o(1) = 5 code units
	content := []byte("héllo\n")

	tests := []struct {
		name     string
		char     int
		wantByte int
	}{
		{"before accent", 1, 1},
		{"after accent", 2, 3},
		{"end of word", 5, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ByteOffsetFromLSP(content, 0, tt.char, PositionEncodingUTF16)
			if !ok {
				t.Fatal("ByteOffsetFromLSP returned ok=false")
			}
			if got != tt.wantByte {
				t.Errorf("ByteOffsetFromLSP(char=%d) = %d; want %d", tt.char, got, tt.wantByte)
			}
		})
	}
}

func TestByteOffsetFromLSP_UTF16_AstralSurrogate(t *testing.T) {
	t.Parallel()

	// U+1F600 (😀) requires a UTF-16 surrogate pair (2 code units) and 4 UTF-8 bytes.
	content := []byte("a😀b\n")

	got, ok := ByteOffsetFromLSP(content, 0, 1, PositionEncodingUTF16)
	if !ok || got != 1 {
		t.Fatalf("ByteOffsetFromLSP(char=1) = %d, %v; want 1, true", got, ok)
	}

	// char=2 lands mid-surrogate; should floor to the start of the astral rune.
	got, ok = ByteOffsetFromLSP(content, 0, 2, PositionEncodingUTF16)
	if !ok || got != 1 {
		t.Fatalf("ByteOffsetFromLSP(char=2) = %d, %v; want 1, true", got, ok)
	}

	got, ok = ByteOffsetFromLSP(content, 0, 3, PositionEncodingUTF16)
	if !ok || got != 5 {
		t.Fatalf("ByteOffsetFromLSP(char=3) = %d, %v; want 5, true", got, ok)
	}
}

func TestByteOffsetFromLSP_UTF8(t *testing.T) {
	t.Parallel()

	content := []byte("héllo\n")

	got, ok := ByteOffsetFromLSP(content, 0, 3, PositionEncodingUTF8)
	if !ok || got != 3 {
		t.Fatalf("ByteOffsetFromLSP(UTF-8, char=3) = %d, %v; want 3, true", got, ok)
	}
}

func TestByteOffsetFromLSP_UnknownLine(t *testing.T) {
	t.Parallel()

	content := []byte("hello\n")
	if _, ok := ByteOffsetFromLSP(content, 5, 0, PositionEncodingUTF16); ok {
		t.Fatal("expected ok=false for a line past the end of content")
	}
}

func TestByteToUTF16Offset_RoundTrip(t *testing.T) {
	t.Parallel()

	content := []byte("a😀b\n")
	byteOff, ok := ByteOffsetFromLSP(content, 0, 3, PositionEncodingUTF16)
	if !ok {
		t.Fatal("ByteOffsetFromLSP returned ok=false")
	}
	back := ByteToUTF16Offset(content, 0, byteOff)
	if back != 3 {
		t.Errorf("ByteToUTF16Offset round trip = %d; want 3", back)
	}
}
