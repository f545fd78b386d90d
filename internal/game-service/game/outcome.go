package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Provenance indica a origem de um resultado de rodada.
type Provenance string

const (
	ProvenanceSystem   Provenance = "SYSTEM"
	ProvenanceOperator Provenance = "OPERATOR"
)

// Outcome é o resultado de uma rodada: um número 0-9 e a cor associada.
type Outcome struct {
	Number int
	Color  Color
}

// ColorFor devolve a cor padrão de um número 0-9:
// 0 e 5 -> violet; pares -> red; ímpares -> green.
func ColorFor(n int) Color {
	switch {
	case n == 0 || n == 5:
		return ColorViolet
	case n%2 == 0:
		return ColorRed
	default:
		return ColorGreen
	}
}

// Draw sorteia um resultado uniforme entre 0 e 9 com a cor padrão.
// O sorteio é propositalmente não ponderado.
func Draw() Outcome {
	n := rand.Intn(10)
	return Outcome{Number: n, Color: ColorFor(n)}
}

var numbersByColor = map[Color][]int{
	ColorViolet: {0, 5},
	ColorRed:    {2, 4, 6, 8},
	ColorGreen:  {1, 3, 7, 9},
}

// DrawForColor sorteia um número compatível com a cor dada.
func DrawForColor(c Color) Outcome {
	ns := numbersByColor[c]
	return Outcome{Number: ns[rand.Intn(len(ns))], Color: c}
}

// CompleteDeclaration valida uma declaração do operador e preenche a metade
// ausente: só número -> cor padrão; só cor -> número sorteado entre os que
// casam com a cor. Combinações número+cor fora do padrão são aceitas como
// declaradas.
func CompleteDeclaration(number *int, color *Color) (Outcome, error) {
	if number == nil && color == nil {
		return Outcome{}, ErrEmptyDeclaration
	}
	if number != nil && (*number < 0 || *number > 9) {
		return Outcome{}, ErrInvalidDeclaredNumber
	}
	if color != nil && !color.Valid() {
		return Outcome{}, ErrInvalidDeclaredColor
	}
	switch {
	case number != nil && color != nil:
		return Outcome{Number: *number, Color: *color}, nil
	case number != nil:
		return Outcome{Number: *number, Color: ColorFor(*number)}, nil
	default:
		return DrawForColor(*color), nil
	}
}

// NewRoundID gera o identificador da próxima rodada. O formato R<timestamp>
// é monotônico e fácil de rastrear em log.
func NewRoundID() string {
	return fmt.Sprintf("R%d", time.Now().UnixNano())
}

// ShortRoundID devolve o sufixo exibido em mensagens para o jogador.
func ShortRoundID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
