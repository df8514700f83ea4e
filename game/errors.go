package game

// Error is a game action failure with a stable machine-readable code.
// Nothing in the game layer is fatal; callers surface these as
// {success:false, error, code} at the API boundary.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrInvalidAmount     = &Error{"INVALID_AMOUNT", "bet amount must be greater than 0"}
	ErrInsufficientFunds = &Error{"INSUFFICIENT_FUNDS", "insufficient balance"}
	ErrGameNotFound      = &Error{"GAME_NOT_FOUND", "game not found"}
	ErrBetsClosed        = &Error{"BETS_CLOSED", "bets are closed for this round"}
	ErrBetAlreadyPlaced  = &Error{"BET_ALREADY_PLACED", "player already has a bet in this round"}
	ErrNoBets            = &Error{"NO_BETS", "no bets placed"}
	ErrBetNotFound       = &Error{"BET_NOT_FOUND", "bet not found"}
	ErrNoNumbersSelected = &Error{"NO_NUMBERS_SELECTED", "straight bet requires at least one number"}
	ErrInvalidBetType    = &Error{"INVALID_BET_TYPE", "unknown bet type"}
	ErrCannotCashOut     = &Error{"CANNOT_CASH_OUT", "cannot cash out at this time"}
	ErrNotYourTurn       = &Error{"NOT_YOUR_TURN", "not your turn"}
	ErrNotEnoughMana     = &Error{"NOT_ENOUGH_MANA", "not enough mana to play this card"}
	ErrCardNotFound      = &Error{"CARD_NOT_FOUND", "card not found in hand"}
	ErrGameNotActive     = &Error{"GAME_NOT_ACTIVE", "game is not active"}
)
