package predicate

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestToDNF(t *testing.T) {
	tests := []struct {
		name        string
		input       Node
		wantClauses int
		wantString  string
	}{
		{
			name:        "single parameter",
			input:       and(eq(colA, 1)),
			wantClauses: 1,
			wantString:  "a == 1",
		},
		{
			name:        "pure conjunction",
			input:       and(eq(colA, 1), eq(colB, 2), eq(colC, 3)),
			wantClauses: 1,
			wantString:  "(a == 1 AND b == 2 AND c == 3)",
		},
		{
			name:        "pure disjunction",
			input:       or(eq(colA, 1), eq(colB, 2), eq(colC, 3)),
			wantClauses: 3,
			wantString:  "(a == 1 OR b == 2 OR c == 3)",
		},
		{
			name:        "conjunction over disjunction",
			input:       and(eq(colA, 1), eq(colD, 4), or(eq(colB, 2), eq(colC, 3))),
			wantClauses: 2,
			wantString:  "((a == 1 AND d == 4 AND b == 2) OR (a == 1 AND d == 4 AND c == 3))",
		},
		{
			name:        "nested inside disjunction",
			input:       or(eq(colD, 4), and(eq(colA, 1), or(eq(colB, 2), eq(colC, 3)))),
			wantClauses: 3,
			wantString:  "(d == 4 OR (a == 1 AND b == 2) OR (a == 1 AND c == 3))",
		},
		{
			name:        "two disjunctions multiply",
			input:       and(or(eq(colA, 1), eq(colB, 2)), or(eq(colC, 3), eq(colD, 4))),
			wantClauses: 4,
			wantString:  "((a == 1 AND c == 3) OR (a == 1 AND d == 4) OR (b == 2 AND c == 3) OR (b == 2 AND d == 4))",
		},
		{
			name:        "disjunction of conjunctions unchanged",
			input:       or(and(eq(colA, 1), eq(colB, 2)), and(eq(colC, 3), eq(colD, 4))),
			wantClauses: 2,
			wantString:  "((a == 1 AND b == 2) OR (c == 3 AND d == 4))",
		},
		{
			name:        "same operator nesting merged",
			input:       and(eq(colA, 1), and(eq(colB, 2), and(eq(colC, 3)))),
			wantClauses: 1,
			wantString:  "(a == 1 AND b == 2 AND c == 3)",
		},
		{
			name:        "custom parameters distribute",
			input:       and(flag(0), or(eq(colA, 1), flag(1))),
			wantClauses: 2,
			wantString:  "((a == 1 AND flag(0)) OR (flag(0) AND flag(1)))",
		},
		{
			name: "deep alternation",
			input: and(eq(colA, 0),
				or(eq(colB, 0),
					and(eq(colC, 0),
						or(eq(colD, 0), eq(colD, 1))))),
			wantClauses: 3,
			wantString:  "((a == 0 AND b == 0) OR (a == 0 AND c == 0 AND d == 0) OR (a == 0 AND c == 0 AND d == 1))",
		},
		{
			name:        "single child disjunction collapses",
			input:       or(and(eq(colA, 1), eq(colB, 2))),
			wantClauses: 1,
			wantString:  "(a == 1 AND b == 2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dnf := ToDNF(tt.input)

			if !IsDNF(dnf) {
				t.Fatalf("ToDNF(%s) = %s is not in DNF", tt.input, dnf)
			}
			if got := ClauseCount(dnf); got != tt.wantClauses {
				t.Errorf("ToDNF(%s) clauses = %d, want %d", tt.input, got, tt.wantClauses)
			}
			if got := dnf.String(); got != tt.wantString {
				t.Errorf("ToDNF(%s).String() = %q, want %q", tt.input, got, tt.wantString)
			}
		})
	}
}

func TestToDNFDoesNotModifyInput(t *testing.T) {
	input := and(eq(colA, 1), or(eq(colB, 2), eq(colC, 3)))
	before := input.String()
	_ = ToDNF(input)
	if input.String() != before {
		t.Errorf("input changed: %s, was %s", input, before)
	}
}

func TestToDNFNil(t *testing.T) {
	if ToDNF(nil) != nil {
		t.Error("ToDNF(nil) should be nil")
	}
	if _, err := NewNormalizer().Normalize(nil); !errors.Is(err, ErrEmptyPredicate) {
		t.Errorf("Normalize(nil) error = %v, want ErrEmptyPredicate", err)
	}
}

func TestDistributionSizeLaw(t *testing.T) {
	t.Run("conjunction over disjunction", func(t *testing.T) {
		for k := 1; k <= 4; k++ {
			for n := 1; n <= 4; n++ {
				var conj, disj []any
				for i := range k {
					conj = append(conj, eq(colA, i))
				}
				for i := range n {
					disj = append(disj, eq(colB, i))
				}
				got := conjunctive(and(conj...), or(disj...))
				if got.Op() != OpOr || got.Len() != n {
					t.Fatalf("k=%d n=%d: got %d clauses (%s)", k, n, got.Len(), got)
				}
				for _, c := range got.Children() {
					if c.Op() != OpAnd || c.Len() != k+1 {
						t.Errorf("k=%d n=%d: clause %s has %d conjuncts, want %d", k, n, c, c.Len(), k+1)
					}
				}
			}
		}
	})

	t.Run("disjunction times disjunction", func(t *testing.T) {
		for n := 1; n <= 4; n++ {
			for m := 1; m <= 4; m++ {
				var x, y []any
				for i := range n {
					x = append(x, eq(colA, i))
				}
				for i := range m {
					y = append(y, eq(colB, i))
				}
				got := conjunctive(or(x...), or(y...))
				if got.Len() != n*m {
					t.Errorf("n=%d m=%d: got %d clauses, want %d", n, m, got.Len(), n*m)
				}
			}
		}
	})

	t.Run("conjunctions concatenate", func(t *testing.T) {
		got := conjunctive(and(eq(colA, 1), eq(colB, 2)), and(eq(colC, 3)))
		if got.String() != "(a == 1 AND b == 2 AND c == 3)" {
			t.Errorf("got %s", got)
		}
	})

	t.Run("disjunction leads when on the left", func(t *testing.T) {
		got := conjunctive(or(eq(colA, 1), eq(colB, 2)), and(eq(colC, 3)))
		if got.String() != "((a == 1 AND c == 3) OR (b == 2 AND c == 3))" {
			t.Errorf("got %s", got)
		}
	})
}

func TestMultiplySplicesConjunctions(t *testing.T) {
	e := or(and(eq(colA, 1), eq(colB, 2)), eq(colC, 3)).(*Or)
	others := and(eq(colD, 4), eq(colD, 5)).base().terms()

	got := multiply(e, others, true)
	if got.Len() != 4 {
		t.Fatalf("got %d clauses, want 4", got.Len())
	}
	for _, c := range got.Children() {
		if len(c.Children()) != 0 {
			t.Errorf("clause %s has nested children", c)
		}
	}
	want := "((c == 3 AND d == 4) OR (c == 3 AND d == 5) OR (a == 1 AND b == 2 AND d == 4) OR (a == 1 AND b == 2 AND d == 5))"
	if got.String() != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestNormalizerMaxClauses(t *testing.T) {
	input := and(
		or(eq(colA, 0), eq(colA, 1), eq(colA, 2)),
		or(eq(colB, 0), eq(colB, 1), eq(colB, 2)),
	)

	if _, err := NewNormalizer(WithMaxClauses(8)).Normalize(input); !errors.Is(err, ErrTooManyClauses) {
		t.Errorf("limit 8: error = %v, want ErrTooManyClauses", err)
	}

	out, err := NewNormalizer(WithMaxClauses(9)).Normalize(input)
	if err != nil {
		t.Fatalf("limit 9: %v", err)
	}
	if ClauseCount(out) != 9 {
		t.Errorf("limit 9: got %d clauses, want 9", ClauseCount(out))
	}
}

func TestNormalizerLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := NewNormalizer(WithLogger(logger)).Normalize(and(eq(colA, 1), or(eq(colB, 2), eq(colC, 3))))
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "normalized predicate") || !strings.Contains(out, "component=normalizer") || !strings.Contains(out, "clauses=2") {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestClauses(t *testing.T) {
	input := or(eq(colD, 4), flag(1), and(eq(colA, 1), or(eq(colB, 2), eq(colC, 3))))
	clauses := Clauses(input)

	var got []string
	for _, c := range clauses {
		got = append(got, c.String())
	}
	want := []string{
		"d == 4",
		"flag(1)",
		"(a == 1 AND b == 2)",
		"(a == 1 AND c == 3)",
	}
	if strings.Join(got, " | ") != strings.Join(want, " | ") {
		t.Errorf("Clauses = %q, want %q", got, want)
	}

	single := Clauses(and(eq(colA, 1), eq(colB, 2)))
	if len(single) != 1 || single[0].Len() != 2 {
		t.Errorf("Clauses of a conjunction = %v", single)
	}
}

func TestIsDNF(t *testing.T) {
	tests := []struct {
		input Node
		want  bool
	}{
		{and(eq(colA, 1)), true},
		{or(eq(colA, 1), and(eq(colB, 2), eq(colC, 3))), true},
		{and(eq(colA, 1), or(eq(colB, 2), eq(colC, 3))), false},
		{or(eq(colA, 1), or(eq(colB, 2), eq(colC, 3))), false},
		{or(and(eq(colA, 1), or(eq(colB, 2), eq(colC, 3)))), false},
	}
	for _, tt := range tests {
		if got := IsDNF(tt.input); got != tt.want {
			t.Errorf("IsDNF(%s) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
