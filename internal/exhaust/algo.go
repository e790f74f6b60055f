package exhaust

import "github.com/zizixmas/bmb/internal/ast"

const maxWitnesses = 8

// useful implements Maranget's usefulness algorithm (as specialized to
// BMB's pattern shapes in §4.E): q is useful against matrix iff some
// value matches q but no row of matrix.
func (c *Checker) useful(matrix [][]ast.Pattern, types []ast.Type, q []ast.Pattern) bool {
	if len(types) == 0 {
		return len(matrix) == 0
	}

	head, sub, has := headCtor(q[0])
	if has {
		spec := c.specialize(matrix, types[0], head)
		qRest := append(append([]ast.Pattern{}, sub...), q[1:]...)
		typesRest := append(append([]ast.Type{}, c.subTypes(types[0], head)...), types[1:]...)
		return c.useful(spec, typesRest, qRest)
	}

	full := c.fullSignature(types[0])
	if full != nil && sigmaComplete(matrix, full) {
		for _, ct := range full {
			spec := c.specialize(matrix, types[0], ct)
			qRest := append(wildcards(ct.arity), q[1:]...)
			typesRest := append(append([]ast.Type{}, c.subTypes(types[0], ct)...), types[1:]...)
			if c.useful(spec, typesRest, qRest) {
				return true
			}
		}
		return false
	}

	def := defaultMatrix(matrix)
	return c.useful(def, types[1:], q[1:])
}

// missingWitnessRows computes, for each current column, a
// representative pattern-string not covered by matrix — a minimal
// witness set, capped at maxWitnesses entries to bound output size
// (§4.E "missing_patterns", minimal witness list).
func (c *Checker) missingWitnessRows(matrix [][]ast.Pattern, types []ast.Type) [][]string {
	if len(types) == 0 {
		if len(matrix) == 0 {
			return [][]string{{}}
		}
		return nil
	}

	full := c.fullSignature(types[0])
	var out [][]string
	if full != nil {
		for _, ct := range full {
			if len(out) >= maxWitnesses {
				break
			}
			spec := c.specialize(matrix, types[0], ct)
			subTypes := c.subTypes(types[0], ct)
			combinedTypes := append(append([]ast.Type{}, subTypes...), types[1:]...)
			subRows := c.missingWitnessRows(spec, combinedTypes)
			for _, row := range subRows {
				headCols, restCols := row[:len(subTypes)], row[len(subTypes):]
				out = append(out, append([]string{renderCtor(ct, headCols)}, restCols...))
				if len(out) >= maxWitnesses {
					break
				}
			}
		}
		return out
	}

	def := defaultMatrix(matrix)
	subRows := c.missingWitnessRows(def, types[1:])
	for _, row := range subRows {
		out = append(out, append([]string{"_"}, row...))
	}
	return out
}

func wildcards(n int) []ast.Pattern {
	out := make([]ast.Pattern, n)
	for i := range out {
		out[i] = &ast.WildcardPattern{}
	}
	return out
}

// sigmaComplete reports whether every constructor in full appears
// somewhere in matrix's first column.
func sigmaComplete(matrix [][]ast.Pattern, full []ctor) bool {
	seen := map[string]bool{}
	for _, row := range matrix {
		if len(row) == 0 {
			continue
		}
		if c, _, ok := headCtor(row[0]); ok {
			seen[c.key()] = true
		}
	}
	for _, ct := range full {
		if !seen[ct.key()] {
			return false
		}
	}
	return true
}

// specialize returns S(ct, matrix): rows whose first column matches
// ct, with that column replaced by its sub-patterns (wildcards
// expanded to ct.arity wildcards; a row whose first column is some
// other constructor is dropped).
func (c *Checker) specialize(matrix [][]ast.Pattern, _ ast.Type, ct ctor) [][]ast.Pattern {
	var out [][]ast.Pattern
	for _, row := range matrix {
		if len(row) == 0 {
			continue
		}
		head, sub, has := headCtor(row[0])
		if !has {
			out = append(out, append(wildcards(ct.arity), row[1:]...))
			continue
		}
		if head.key() != ct.key() {
			continue
		}
		newRow := append(append([]ast.Pattern{}, sub...), row[1:]...)
		out = append(out, newRow)
	}
	return out
}

// defaultMatrix returns D(matrix): rows whose first column is a
// wildcard/variable/array-rest, with that column dropped.
func defaultMatrix(matrix [][]ast.Pattern) [][]ast.Pattern {
	var out [][]ast.Pattern
	for _, row := range matrix {
		if len(row) == 0 {
			continue
		}
		if _, _, has := headCtor(row[0]); !has {
			out = append(out, row[1:])
		}
	}
	return out
}
