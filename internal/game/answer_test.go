package game

import "testing"

func TestCorrectAnswerAllDigits(t *testing.T) {
	for test := 0; test <= 9; test++ {
		for difficulty := 1; difficulty <= 9; difficulty++ {
			sub := CorrectAnswer(test, difficulty, Subtract)
			if want := (test - difficulty + 10) % 10; sub != want {
				t.Fatalf("subtract %d-%d: expected %d, got %d", test, difficulty, want, sub)
			}
			add := CorrectAnswer(test, difficulty, Add)
			if want := (test + difficulty) % 10; add != want {
				t.Fatalf("add %d+%d: expected %d, got %d", test, difficulty, want, add)
			}
			if !IsDigit(sub) || !IsDigit(add) {
				t.Fatalf("answers out of range: %d %d", sub, add)
			}
		}
	}
}

func TestCorrectAnswerWrapsNegative(t *testing.T) {
	if got := CorrectAnswer(2, 5, Subtract); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	ok, correct := Validate(7, 6, 1, Subtract)
	if !ok || correct != 6 {
		t.Fatalf("expected 6 to be correct, got ok=%v correct=%d", ok, correct)
	}
	ok, correct = Validate(7, 5, 1, Subtract)
	if ok || correct != 6 {
		t.Fatalf("expected 5 to be wrong, got ok=%v correct=%d", ok, correct)
	}
}

func TestParseOperation(t *testing.T) {
	cases := map[string]Operation{
		"add":      Add,
		"ADD":      Add,
		"subtract": Subtract,
		" Sub ":    Subtract,
	}
	for in, want := range cases {
		got, err := ParseOperation(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %v, got %v", in, want, got)
		}
	}
	if _, err := ParseOperation("multiply"); err == nil {
		t.Fatalf("expected error for unknown operation")
	}
}
