package filter

import "testing"

func TestNilProgramKeepsEverything(t *testing.T) {
	t.Parallel()

	p, err := Compile("")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	keep, err := p.Keep(map[string]interface{}{"Score": 1})
	if err != nil || !keep {
		t.Fatalf("Keep = %v, %v; want true, nil", keep, err)
	}
}

func TestKeepEvaluatesFields(t *testing.T) {
	t.Parallel()

	p, err := Compile(`Score > 100 && !Stickied`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	keep, err := p.Keep(map[string]interface{}{"Score": 250, "Stickied": false})
	if err != nil || !keep {
		t.Fatalf("high-score item: Keep = %v, %v", keep, err)
	}
	keep, err = p.Keep(map[string]interface{}{"Score": 250, "Stickied": true})
	if err != nil || keep {
		t.Fatalf("stickied item: Keep = %v, %v", keep, err)
	}
}

func TestCompileRejectsBadExpressions(t *testing.T) {
	t.Parallel()

	if _, err := Compile("Score >"); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestKeepRejectsNonBoolean(t *testing.T) {
	t.Parallel()

	p, err := Compile(`Score + 1`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := p.Keep(map[string]interface{}{"Score": 1}); err == nil {
		t.Fatal("expected type error for non-boolean filter result")
	}
}
