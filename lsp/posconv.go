package lsp

import (
	"bytes"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lume-lang/lume-lsp/internal/compiler"
)

// PositionEncoding represents the position encoding used for LSP communication.
// LSP 3.17 introduced position encoding negotiation; prior versions assumed UTF-16.
type PositionEncoding string

const (
	// PositionEncodingUTF16 counts positions in UTF-16 code units.
	// This is the default for LSP compatibility: VS Code and most editors
	// use UTF-16 internally, and LSP < 3.17 mandates it.
	PositionEncodingUTF16 PositionEncoding = "utf-16"

	// PositionEncodingUTF8 counts positions in UTF-8 bytes. When negotiated,
	// positions map directly to byte offsets within lines.
	PositionEncodingUTF8 PositionEncoding = "utf-8"
)

// lineStartByte returns the byte offset of the start of the given zero-based
// line within content, scanning newlines from the beginning. This mirrors
// the byte-offset representation the compiler front end uses internally;
// there is no cached line index, since the Semantic Index recompiles on
// every change rather than maintaining incremental line tables.
func lineStartByte(content []byte, line int) (int, bool) {
	if line == 0 {
		return 0, true
	}
	seen := 0
	for i, b := range content {
		if b != '\n' {
			continue
		}
		seen++
		if seen == line {
			return i + 1, true
		}
	}
	return 0, false
}

// ByteOffsetFromLSP converts an LSP position within content to a byte offset.
//
// Mid-surrogate positions (UTF-16): if char points to the second code unit
// of a surrogate pair, it floors to the start of that rune.
func ByteOffsetFromLSP(content []byte, line, char int, enc PositionEncoding) (int, bool) {
	lineStart, ok := lineStartByte(content, line)
	if !ok {
		return 0, false
	}

	switch enc {
	case PositionEncodingUTF8:
		return clampToLineEnd(content, lineStart, lineStart+char), true
	default:
		return utf16CharToByteOffset(content, lineStart, char), true
	}
}

// utf16CharToByteOffset converts a UTF-16 character offset to a byte offset.
func utf16CharToByteOffset(content []byte, lineStart, charOffset int) int {
	if charOffset <= 0 {
		return lineStart
	}

	pos := lineStart
	utf16Units := 0

	for pos < len(content) && utf16Units < charOffset {
		r, size := utf8.DecodeRune(content[pos:])
		if r == utf8.RuneError && size <= 1 {
			utf16Units++
			pos++
			continue
		}

		if r == '\n' {
			break
		}

		if r > 0xFFFF {
			if utf16Units+2 > charOffset && utf16Units+1 == charOffset {
				return pos
			}
			utf16Units += 2
		} else {
			utf16Units++
		}
		pos += size
	}

	return pos
}

// clampToLineEnd ensures offset doesn't exceed the end of the current line.
func clampToLineEnd(content []byte, lineStart, offset int) int {
	if offset < lineStart {
		return lineStart
	}
	lineContent := content[lineStart:]
	if idx := bytes.IndexByte(lineContent, '\n'); idx >= 0 {
		lineEnd := lineStart + idx
		if offset > lineEnd {
			return lineEnd
		}
	} else if offset > len(content) {
		return len(content)
	}
	return offset
}

// ByteToUTF16Offset converts a byte offset on a line to UTF-16 code units.
// This is the inverse of utf16CharToByteOffset, used for outbound conversion.
func ByteToUTF16Offset(content []byte, lineStart, targetByte int) int {
	if targetByte <= lineStart {
		return 0
	}

	utf16Units := 0
	pos := lineStart

	for pos < targetByte && pos < len(content) {
		r, size := utf8.DecodeRune(content[pos:])
		if r == utf8.RuneError && size <= 1 {
			utf16Units++
			pos++
			continue
		}

		if r == '\n' {
			break
		}

		if pos+size > targetByte {
			break
		}

		if r > 0xFFFF {
			utf16Units += 2
		} else {
			utf16Units++
		}
		pos += size
	}

	return utf16Units
}

// byteOffsetToLineChar converts a byte offset within content to a zero-based
// (line, char) pair under the given encoding.
func byteOffsetToLineChar(content []byte, offset int, enc PositionEncoding) (line, char int) {
	if offset > len(content) {
		offset = len(content)
	}

	lineStart := 0
	for i := 0; i < offset; i++ {
		if content[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	switch enc {
	case PositionEncodingUTF8:
		char = offset - lineStart
	default:
		char = ByteToUTF16Offset(content, lineStart, offset)
	}
	return line, char
}

// LocationToRange converts a compiler Location (byte-offset span over its
// source file's content) to an LSP Range under the given encoding.
func LocationToRange(loc compiler.Location, enc PositionEncoding) protocol.Range {
	content := []byte(loc.File.Content)
	startLine, startChar := byteOffsetToLineChar(content, loc.Start, enc)
	endLine, endChar := byteOffsetToLineChar(content, loc.End, enc)
	return protocol.Range{
		Start: protocol.Position{Line: uint32(startLine), Character: uint32(startChar)},
		End:   protocol.Position{Line: uint32(endLine), Character: uint32(endChar)},
	}
}
