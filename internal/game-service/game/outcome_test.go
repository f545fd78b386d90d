package game

import "testing"

func TestColorForCoversAllNumbers(t *testing.T) {
	want := map[int]Color{
		0: ColorViolet,
		1: ColorGreen,
		2: ColorRed,
		3: ColorGreen,
		4: ColorRed,
		5: ColorViolet,
		6: ColorRed,
		7: ColorGreen,
		8: ColorRed,
		9: ColorGreen,
	}
	for n, c := range want {
		if got := ColorFor(n); got != c {
			t.Errorf("ColorFor(%d) = %s, want %s", n, got, c)
		}
	}
}

func TestDrawIsAlwaysConsistent(t *testing.T) {
	for i := 0; i < 100; i++ {
		out := Draw()
		if out.Number < 0 || out.Number > 9 {
			t.Fatalf("Draw returned number out of range: %d", out.Number)
		}
		if out.Color != ColorFor(out.Number) {
			t.Fatalf("Draw returned %d with color %s, want %s", out.Number, out.Color, ColorFor(out.Number))
		}
	}
}

func TestDrawForColorMatchesColor(t *testing.T) {
	for _, c := range []Color{ColorRed, ColorGreen, ColorViolet} {
		for i := 0; i < 50; i++ {
			out := DrawForColor(c)
			if out.Color != c {
				t.Fatalf("DrawForColor(%s) returned color %s", c, out.Color)
			}
			if ColorFor(out.Number) != c {
				t.Fatalf("DrawForColor(%s) returned number %d with standard color %s", c, out.Number, ColorFor(out.Number))
			}
		}
	}
}

func TestCompleteDeclaration(t *testing.T) {
	n := 4
	c := ColorGreen

	t.Run("empty", func(t *testing.T) {
		if _, err := CompleteDeclaration(nil, nil); err != ErrEmptyDeclaration {
			t.Fatalf("err = %v, want ErrEmptyDeclaration", err)
		}
	})

	t.Run("number only uses standard color", func(t *testing.T) {
		out, err := CompleteDeclaration(&n, nil)
		if err != nil {
			t.Fatal(err)
		}
		if out.Number != 4 || out.Color != ColorRed {
			t.Fatalf("got %+v, want {4 red}", out)
		}
	})

	t.Run("color only draws matching number", func(t *testing.T) {
		out, err := CompleteDeclaration(nil, &c)
		if err != nil {
			t.Fatal(err)
		}
		if out.Color != ColorGreen || ColorFor(out.Number) != ColorGreen {
			t.Fatalf("got %+v, want a green number", out)
		}
	})

	t.Run("non-standard pair accepted verbatim", func(t *testing.T) {
		out, err := CompleteDeclaration(&n, &c)
		if err != nil {
			t.Fatal(err)
		}
		if out.Number != 4 || out.Color != ColorGreen {
			t.Fatalf("got %+v, want {4 green}", out)
		}
	})

	t.Run("invalid number", func(t *testing.T) {
		bad := 12
		if _, err := CompleteDeclaration(&bad, nil); err != ErrInvalidDeclaredNumber {
			t.Fatalf("err = %v, want ErrInvalidDeclaredNumber", err)
		}
	})

	t.Run("invalid color", func(t *testing.T) {
		bad := Color("blue")
		if _, err := CompleteDeclaration(nil, &bad); err != ErrInvalidDeclaredColor {
			t.Fatalf("err = %v, want ErrInvalidDeclaredColor", err)
		}
	})
}

func TestShortRoundID(t *testing.T) {
	if got := ShortRoundID("R1693526400123"); got != "400123" {
		t.Errorf("ShortRoundID = %q", got)
	}
	if got := ShortRoundID("R12"); got != "R12" {
		t.Errorf("short ids pass through, got %q", got)
	}
}
