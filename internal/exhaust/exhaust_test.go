package exhaust

import (
	"testing"

	"github.com/zizixmas/bmb/internal/ast"
)

func optionVariants() ([]ast.EnumVariantType, bool) {
	return []ast.EnumVariantType{
		{Name: "Some", Fields: []ast.Type{&ast.Primitive{Name: "i64"}}},
		{Name: "None"},
	}, true
}

func lookupOption(name string) ([]ast.EnumVariantType, bool) {
	if name == "Option" {
		return optionVariants()
	}
	return nil, false
}

func TestBoolExhaustive(t *testing.T) {
	c := NewChecker(lookupOption)
	arms := []ast.MatchArm{
		{Pattern: &ast.LitPattern{Value: &ast.BoolLit{Value: true}}},
		{Pattern: &ast.LitPattern{Value: &ast.BoolLit{Value: false}}},
	}
	rep := c.CheckMatch(arms, &ast.Primitive{Name: "bool"})
	if len(rep.MissingPatterns) != 0 {
		t.Fatalf("expected exhaustive, missing %v", rep.MissingPatterns)
	}
}

func TestBoolNonExhaustive(t *testing.T) {
	c := NewChecker(lookupOption)
	arms := []ast.MatchArm{
		{Pattern: &ast.LitPattern{Value: &ast.BoolLit{Value: true}}},
	}
	rep := c.CheckMatch(arms, &ast.Primitive{Name: "bool"})
	if len(rep.MissingPatterns) == 0 {
		t.Fatal("expected a missing pattern for false")
	}
}

func TestEnumExhaustive(t *testing.T) {
	c := NewChecker(lookupOption)
	arms := []ast.MatchArm{
		{Pattern: &ast.VariantPattern{EnumName: "Option", Variant: "Some", SubPats: []ast.Pattern{&ast.WildcardPattern{}}}},
		{Pattern: &ast.VariantPattern{EnumName: "Option", Variant: "None"}},
	}
	rep := c.CheckMatch(arms, &ast.Named{Name: "Option"})
	if len(rep.MissingPatterns) != 0 {
		t.Fatalf("expected exhaustive, missing %v", rep.MissingPatterns)
	}
}

func TestEnumMissingVariant(t *testing.T) {
	c := NewChecker(lookupOption)
	arms := []ast.MatchArm{
		{Pattern: &ast.VariantPattern{EnumName: "Option", Variant: "Some", SubPats: []ast.Pattern{&ast.WildcardPattern{}}}},
	}
	rep := c.CheckMatch(arms, &ast.Named{Name: "Option"})
	if len(rep.MissingPatterns) == 0 {
		t.Fatal("expected a missing pattern for None")
	}
}

func TestUnreachableArmAfterWildcard(t *testing.T) {
	c := NewChecker(lookupOption)
	arms := []ast.MatchArm{
		{Pattern: &ast.WildcardPattern{}},
		{Pattern: &ast.LitPattern{Value: &ast.BoolLit{Value: true}}},
	}
	rep := c.CheckMatch(arms, &ast.Primitive{Name: "bool"})
	if len(rep.UnreachableArms) != 1 || rep.UnreachableArms[0] != 1 {
		t.Fatalf("expected arm 1 unreachable, got %v", rep.UnreachableArms)
	}
}

func TestGuardWithoutFallback(t *testing.T) {
	c := NewChecker(lookupOption)
	arms := []ast.MatchArm{
		{Pattern: &ast.VarPattern{Name: "x"}, Guard: &ast.BoolLit{Value: true}},
	}
	rep := c.CheckMatch(arms, &ast.Primitive{Name: "bool"})
	if !rep.HasGuardsWithoutFallback {
		t.Fatal("expected HasGuardsWithoutFallback")
	}
}

func TestGuardWithFallback(t *testing.T) {
	c := NewChecker(lookupOption)
	arms := []ast.MatchArm{
		{Pattern: &ast.VarPattern{Name: "x"}, Guard: &ast.BoolLit{Value: true}},
		{Pattern: &ast.WildcardPattern{}},
	}
	rep := c.CheckMatch(arms, &ast.Primitive{Name: "bool"})
	if rep.HasGuardsWithoutFallback {
		t.Fatal("did not expect HasGuardsWithoutFallback")
	}
}
