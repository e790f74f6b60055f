package smt

import "strings"

// Assignment is one (name, value) pair extracted from a solver's
// counterexample model. Value is kept as the solver's own printed
// form; §4.H requires no further interpretation for display.
type Assignment struct {
	Name  string
	Value string
}

// ParseModel extracts every `(define-fun name () Sort value)` pair
// from a whitespace-tolerant s-expression model dump such as:
//
//	(model
//	  (define-fun x () Int 3)
//	  (define-fun ok () Bool false))
//
// Sort is read and discarded; only name and the printed value survive.
func ParseModel(out string) []Assignment {
	toks := tokenize(out)
	var result []Assignment
	for i := 0; i < len(toks); i++ {
		if toks[i] != "(" || i+1 >= len(toks) || toks[i+1] != "define-fun" {
			continue
		}
		j := i + 2
		if j >= len(toks) {
			continue
		}
		name := toks[j]
		j++
		// skip the parameter list "()" or "( (p S) ... )"
		if j < len(toks) && toks[j] == "(" {
			depth := 1
			j++
			for j < len(toks) && depth > 0 {
				if toks[j] == "(" {
					depth++
				} else if toks[j] == ")" {
					depth--
				}
				j++
			}
		}
		// sort token(s): consume until we reach the value, which is
		// either a single atom or a parenthesized term immediately
		// before the closing paren of define-fun. The sort itself may
		// be a parenthesized parametric sort; track paren depth so a
		// sort like "(Array Int Int)" is skipped as one unit and the
		// value term that follows (which may also be parenthesized,
		// e.g. a negative number "(- 1)") is read correctly.
		if j >= len(toks) {
			continue
		}
		if toks[j] == "(" {
			depth := 1
			j++
			for j < len(toks) && depth > 0 {
				if toks[j] == "(" {
					depth++
				} else if toks[j] == ")" {
					depth--
				}
				j++
			}
		} else {
			j++ // plain sort atom
		}
		value, next := readValue(toks, j)
		result = append(result, Assignment{Name: name, Value: value})
		i = next
	}
	return result
}

// readValue reads one value term starting at toks[i]: either a single
// atom, or a balanced parenthesized term (e.g. "(- 1)" or "(as
// Variant Sort)"). It returns the rendered term and the index of the
// last token consumed.
func readValue(toks []string, i int) (string, int) {
	if i >= len(toks) {
		return "", i
	}
	if toks[i] != "(" {
		return toks[i], i
	}
	start := i
	depth := 1
	i++
	for i < len(toks) && depth > 0 {
		if toks[i] == "(" {
			depth++
		} else if toks[i] == ")" {
			depth--
		}
		i++
	}
	var b strings.Builder
	for k := start; k < i; k++ {
		if k > start && toks[k] != ")" && toks[k-1] != "(" {
			b.WriteByte(' ')
		}
		b.WriteString(toks[k])
	}
	return b.String(), i - 1
}

func tokenize(s string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	inString := false
	for _, r := range s {
		if inString {
			cur.WriteRune(r)
			if r == '"' {
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
			cur.WriteRune(r)
		case '(', ')':
			flush()
			toks = append(toks, string(r))
		case ' ', '\t', '\n', '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}
