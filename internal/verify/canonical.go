package verify

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/zizixmas/bmb/internal/ast"
)

// canonicalHash hashes e's AST shape for the duplicate-contract check
// (§4.I: "canonical over the AST shape, implementation may use a
// stable serialization"). Every Expr already has a deterministic
// String() that renders its full parenthesized structure (used
// throughout internal/ast for error messages); that rendering is
// already a stable, whitespace-normalized serialization of the shape,
// so reusing it avoids writing a second AST walker whose output could
// drift out of sync with the first.
func canonicalHash(e ast.Expr) string {
	sum := sha256.Sum256([]byte(e.String()))
	return hex.EncodeToString(sum[:])
}
