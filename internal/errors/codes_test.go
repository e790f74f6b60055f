package errors

import "testing"

func TestErrorCodeTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		phase    string
		category string
	}{
		{"LEX001", LEX001, "lex", "char"},
		{"PAR001", PAR001, "parse", "syntax"},
		{"PAR006", PAR006, "parse", "contract"},
		{"RES001", RES001, "resolve", "module"},
		{"RES003", RES003, "resolve", "cycle"},
		{"TYP001", TYP001, "typecheck", "unify"},
		{"TYP007", TYP007, "typecheck", "inference"},
		{"EXH001", EXH001, "exhaust", "coverage"},
		{"MIR001", MIR001, "mir", "cfg"},
		{"SMT003", SMT003, "smt", "solver"},
		{"VER001", VER001, "verify", "contract"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, exists := GetErrorInfo(tt.code)
			if !exists {
				t.Fatalf("error code %s not found in registry", tt.code)
			}
			if info.Code != tt.code {
				t.Errorf("code mismatch: got %s, want %s", info.Code, tt.code)
			}
			if info.Phase != tt.phase {
				t.Errorf("phase mismatch for %s: got %s, want %s", tt.code, info.Phase, tt.phase)
			}
			if info.Category != tt.category {
				t.Errorf("category mismatch for %s: got %s, want %s", tt.code, info.Category, tt.category)
			}
		})
	}
}

func TestErrorPhaseCheckers(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		isLex     bool
		isParse   bool
		isResolve bool
		isType    bool
		isExhaust bool
		isMir     bool
		isSmt     bool
		isVerify  bool
	}{
		{"lex", LEX001, true, false, false, false, false, false, false, false},
		{"parse", PAR001, false, true, false, false, false, false, false, false},
		{"resolve", RES001, false, false, true, false, false, false, false, false},
		{"typecheck", TYP001, false, false, false, true, false, false, false, false},
		{"exhaust", EXH001, false, false, false, false, true, false, false, false},
		{"mir", MIR001, false, false, false, false, false, true, false, false},
		{"smt", SMT001, false, false, false, false, false, false, true, false},
		{"verify", VER001, false, false, false, false, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLexError(tt.code); got != tt.isLex {
				t.Errorf("IsLexError(%s) = %v, want %v", tt.code, got, tt.isLex)
			}
			if got := IsParseError(tt.code); got != tt.isParse {
				t.Errorf("IsParseError(%s) = %v, want %v", tt.code, got, tt.isParse)
			}
			if got := IsResolveError(tt.code); got != tt.isResolve {
				t.Errorf("IsResolveError(%s) = %v, want %v", tt.code, got, tt.isResolve)
			}
			if got := IsTypeError(tt.code); got != tt.isType {
				t.Errorf("IsTypeError(%s) = %v, want %v", tt.code, got, tt.isType)
			}
			if got := IsExhaustivenessError(tt.code); got != tt.isExhaust {
				t.Errorf("IsExhaustivenessError(%s) = %v, want %v", tt.code, got, tt.isExhaust)
			}
			if got := IsMirError(tt.code); got != tt.isMir {
				t.Errorf("IsMirError(%s) = %v, want %v", tt.code, got, tt.isMir)
			}
			if got := IsSmtError(tt.code); got != tt.isSmt {
				t.Errorf("IsSmtError(%s) = %v, want %v", tt.code, got, tt.isSmt)
			}
			if got := IsVerifyError(tt.code); got != tt.isVerify {
				t.Errorf("IsVerifyError(%s) = %v, want %v", tt.code, got, tt.isVerify)
			}
		})
	}
}

func TestAllErrorCodesInRegistry(t *testing.T) {
	allCodes := []string{
		LEX001, LEX002, LEX003, LEX004, LEX005,
		PAR001, PAR002, PAR003, PAR004, PAR005, PAR006, PAR007, PAR008, PAR009, PAR010,
		RES001, RES002, RES003, RES004, RES005, RES006,
		TYP001, TYP002, TYP003, TYP004, TYP005, TYP006, TYP007, TYP008,
		EXH001, EXH002, EXH003,
		MIR001, MIR002, MIR003, MIR004,
		SMT001, SMT002, SMT003, SMT004,
		VER001, VER002, VER003, VER004, VER005, VER006,
	}

	for _, code := range allCodes {
		t.Run(code, func(t *testing.T) {
			if _, exists := GetErrorInfo(code); !exists {
				t.Errorf("error code %s is defined but not in registry", code)
			}
		})
	}

	if len(ErrorRegistry) < len(allCodes) {
		t.Errorf("registry has %d codes, expected at least %d", len(ErrorRegistry), len(allCodes))
	}
}

func TestIsWarningMatchesSeverityTaxonomy(t *testing.T) {
	warnings := []string{EXH002, EXH003, SMT003, VER002, VER003, VER004, VER005, VER006, RES006}
	for _, code := range warnings {
		if !IsWarning(code) {
			t.Errorf("IsWarning(%s) = false, want true", code)
		}
	}
	errorsOnly := []string{LEX001, PAR001, RES001, TYP001, EXH001, MIR001, SMT001, VER001}
	for _, code := range errorsOnly {
		if IsWarning(code) {
			t.Errorf("IsWarning(%s) = true, want false", code)
		}
	}
	if IsWarning("NOPE000") {
		t.Error("IsWarning of an unknown code should be false")
	}
}

func TestErrorInfoConsistency(t *testing.T) {
	validPhases := map[string]bool{
		"lex": true, "parse": true, "resolve": true, "typecheck": true,
		"exhaust": true, "mir": true, "smt": true, "verify": true,
	}

	for code, info := range ErrorRegistry {
		if info.Code != code {
			t.Errorf("code mismatch in registry: key=%s, info.Code=%s", code, info.Code)
		}
		if len(code) < 4 || len(code) > 6 {
			t.Errorf("invalid code format: %s", code)
		}
		if !validPhases[info.Phase] {
			t.Errorf("invalid phase for %s: %s", code, info.Phase)
		}
		if info.Description == "" {
			t.Errorf("empty description for %s", code)
		}
	}
}
