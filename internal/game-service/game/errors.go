package game

import "errors"

// Erros de domínio do jogo. A camada HTTP mapeia cada um para o status
// adequado via errors.Is.
var (
	ErrInvalidAmount     = errors.New("invalid bet amount")
	ErrNoSelection       = errors.New("no color or number selected")
	ErrInvalidSelection  = errors.New("invalid selection: must be a number 0-9 or red/green/violet")
	ErrInvalidRoundID    = errors.New("invalid round id")
	ErrRoundMismatch     = errors.New("round mismatch")
	ErrBettingClosed     = errors.New("betting is currently closed for this round")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateBet      = errors.New("bet already placed on this selection for this round")
	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrEmptyDeclaration      = errors.New("must provide either a number (0-9) or a color (red/green/violet)")
	ErrInvalidDeclaredNumber = errors.New("invalid result number: must be between 0-9")
	ErrInvalidDeclaredColor  = errors.New("invalid color: must be red, green, or violet")
	ErrResultAlreadyDeclared = errors.New("a result has already been declared for this round")
	ErrDeclarationNotFound   = errors.New("no declared result found for this round")
)
