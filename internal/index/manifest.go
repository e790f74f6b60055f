package index

import "time"

// schemaVersion is the `manifest.json` "version" field, bumped only
// when the artifact shapes change incompatibly.
const schemaVersion = "1"

// Generate produces the complete ProjectIndex accumulated so far,
// stamping the manifest with the current time in RFC3339 UTC (§6).
func (g *Generator) Generate() ProjectIndex {
	structs, enums, contracts := 0, 0, 0
	for _, t := range g.types {
		switch t.Kind {
		case "struct":
			structs++
		case "enum":
			enums++
		}
	}
	for _, f := range g.functions {
		if f.Contracts != nil {
			contracts++
		}
	}

	return ProjectIndex{
		Manifest: Manifest{
			Version:    schemaVersion,
			BmbVersion: g.bmbVersion,
			Project:    g.project,
			IndexedAt:  time.Now().UTC().Format(time.RFC3339),
			Files:      g.filesIndexed,
			Functions:  len(g.functions),
			Types:      len(g.types),
			Structs:    structs,
			Enums:      enums,
			Contracts:  contracts,
		},
		Symbols:   g.symbols,
		Functions: g.functions,
		Types:     g.types,
	}
}
