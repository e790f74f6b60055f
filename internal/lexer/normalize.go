package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

// bomUTF8 is the UTF-8 Byte Order Mark.
var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize performs source normalization at the lexer boundary, per §6:
//  1. strips a UTF-8 BOM if present,
//  2. normalizes CRLF line endings to LF,
//  3. applies Unicode NFC normalization.
//
// This ensures that lexically equivalent source code produces identical
// token streams and spans regardless of encoding or line-ending
// variations, and that two identifiers spelled with different
// combining-character sequences hash identically for the duplicate-
// contract canonicalizer (§4.I).
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	src = bytes.ReplaceAll(src, []byte("\r"), []byte("\n"))

	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}

	return src
}
