package game

import (
	"strconv"
	"strings"
)

// Color é uma das três cores apostáveis.
type Color string

const (
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorViolet Color = "violet"
)

func (c Color) Valid() bool {
	return c == ColorRed || c == ColorGreen || c == ColorViolet
}

type SelectionKind int

const (
	SelectionNumber SelectionKind = iota
	SelectionColor
)

// Selection é o alvo da aposta: um número exato (0-9) ou uma cor.
// O tipo é decidido uma única vez, na admissão da aposta; as regras de
// pagamento nunca inspecionam strings.
type Selection struct {
	Kind   SelectionKind
	Number int
	Color  Color
}

func NumberSelection(n int) Selection {
	return Selection{Kind: SelectionNumber, Number: n}
}

func ColorSelection(c Color) Selection {
	return Selection{Kind: SelectionColor, Color: c}
}

// ParseSelection interpreta o valor cru enviado pelo cliente
// ("0".."9" ou "red"/"green"/"violet").
func ParseSelection(raw string) (Selection, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return Selection{}, ErrNoSelection
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 || n > 9 {
			return Selection{}, ErrInvalidSelection
		}
		return NumberSelection(n), nil
	}
	c := Color(raw)
	if !c.Valid() {
		return Selection{}, ErrInvalidSelection
	}
	return ColorSelection(c), nil
}

// String devolve a forma persistida/exibida da seleção.
func (s Selection) String() string {
	if s.Kind == SelectionNumber {
		return strconv.Itoa(s.Number)
	}
	return string(s.Color)
}
