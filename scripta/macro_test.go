package scripta

import (
	"reflect"
	"testing"
)

func TestBuildMathMacroDict(t *testing.T) {
	raw := "half:\\frac{1}{2}\npi:\\pi\n\nmalformed line no colon\n"
	got := BuildMathMacroDict(raw)
	want := map[string]string{"half": "\\frac{1}{2}", "pi": "\\pi"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExpandMathMacrosSubstitutesAllOccurrences(t *testing.T) {
	dict := map[string]string{"half": "\\frac{1}{2}"}
	got := ExpandMathMacros(dict, "\\half + \\half = 1")
	want := "\\frac{1}{2} + \\frac{1}{2} = 1"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandMathMacrosEmptyDictIsIdentity(t *testing.T) {
	raw := "\\half + \\half"
	if got := ExpandMathMacros(nil, raw); got != raw {
		t.Errorf("got %q, want unchanged %q", got, raw)
	}
}

func TestExpandTextMacrosReplacesZeroArgFun(t *testing.T) {
	dict := map[string]string{"TODO": "to be written"}
	exprs := []Expression{
		Text{Str: "see "},
		Fun{Name: "TODO"},
		Text{Str: " below"},
	}
	got := ExpandTextMacros(dict, exprs)
	if len(got) != 3 {
		t.Fatalf("got %d exprs, want 3", len(got))
	}
	txt, ok := got[1].(Text)
	if !ok || txt.Str != "to be written" {
		t.Errorf("got[1] = %+v, want Text{to be written}", got[1])
	}
}

func TestExpandTextMacrosLeavesFunWithArgsAlone(t *testing.T) {
	dict := map[string]string{"b": "bold-expansion"}
	exprs := []Expression{
		Fun{Name: "b", Args: []Expression{Text{Str: "strong"}}},
	}
	got := ExpandTextMacros(dict, exprs)
	fn, ok := got[0].(Fun)
	if !ok || fn.Name != "b" {
		t.Fatalf("expected Fun(b) with args preserved untouched, got %+v", got[0])
	}
}

func TestExpandTextMacrosRecursesIntoExprList(t *testing.T) {
	dict := map[string]string{"x": "expanded-x"}
	exprs := []Expression{
		ExprList{Children: []Expression{Fun{Name: "x"}}},
	}
	got := ExpandTextMacros(dict, exprs)
	list, ok := got[0].(ExprList)
	if !ok {
		t.Fatalf("expected ExprList, got %T", got[0])
	}
	if txt, ok := list.Children[0].(Text); !ok || txt.Str != "expanded-x" {
		t.Errorf("list.Children[0] = %+v, want Text{expanded-x}", list.Children[0])
	}
}

func TestExpandTextMacrosEmptyDictIsIdentity(t *testing.T) {
	exprs := []Expression{Fun{Name: "unknown"}}
	got := ExpandTextMacros(nil, exprs)
	if !reflect.DeepEqual(got, exprs) {
		t.Errorf("got %+v, want unchanged %+v", got, exprs)
	}
}
