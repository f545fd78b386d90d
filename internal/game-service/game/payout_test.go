package game

import "testing"

func TestSettleBetPayoutTable(t *testing.T) {
	cases := []struct {
		name    string
		sel     Selection
		out     Outcome
		stake   int64
		won     bool
		payout  int64
	}{
		{"exact zero pays 3x", NumberSelection(0), Outcome{0, ColorViolet}, 100, true, 300},
		{"exact number pays 2x", NumberSelection(7), Outcome{7, ColorGreen}, 100, true, 200},
		{"winning color pays 2x", ColorSelection(ColorRed), Outcome{4, ColorRed}, 100, true, 200},
		{"violet pays 2x like any color", ColorSelection(ColorViolet), Outcome{5, ColorViolet}, 100, true, 200},
		{"losing number refunds 5%", NumberSelection(1), Outcome{2, ColorRed}, 100, false, 5},
		{"losing color refunds 5%", ColorSelection(ColorGreen), Outcome{2, ColorRed}, 100, false, 5},
		{"number does not match against color", ColorSelection(ColorGreen), Outcome{5, ColorViolet}, 100, false, 5},
		{"refund floors on small stakes", NumberSelection(9), Outcome{0, ColorViolet}, 10, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			won, payout := SettleBet(tc.sel, tc.stake, tc.out)
			if won != tc.won || payout != tc.payout {
				t.Fatalf("SettleBet(%v, %d, %+v) = (%v, %d), want (%v, %d)",
					tc.sel, tc.stake, tc.out, won, payout, tc.won, tc.payout)
			}
		})
	}
}

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection("3")
	if err != nil || sel.Kind != SelectionNumber || sel.Number != 3 {
		t.Fatalf("ParseSelection(3) = %+v, %v", sel, err)
	}

	sel, err = ParseSelection(" GREEN ")
	if err != nil || sel.Kind != SelectionColor || sel.Color != ColorGreen {
		t.Fatalf("ParseSelection(GREEN) = %+v, %v", sel, err)
	}

	if _, err := ParseSelection(""); err != ErrNoSelection {
		t.Fatalf("empty selection: err = %v", err)
	}
	if _, err := ParseSelection("10"); err != ErrInvalidSelection {
		t.Fatalf("out of range number: err = %v", err)
	}
	if _, err := ParseSelection("blue"); err != ErrInvalidSelection {
		t.Fatalf("unknown color: err = %v", err)
	}
}

func TestSelectionString(t *testing.T) {
	if NumberSelection(7).String() != "7" {
		t.Error("number selection string")
	}
	if ColorSelection(ColorViolet).String() != "violet" {
		t.Error("color selection string")
	}
}
