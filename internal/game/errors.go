// internal/game/errors.go
package game

// ErrorCode identifies a rejection sent to the offending client. Every
// rejection leaves room state unchanged; none are fatal to the room.
type ErrorCode string

const (
	// Precondition violations (wrong phase / wrong moment).
	ErrGameAlreadyStarted ErrorCode = "GAME_ALREADY_STARTED"
	ErrGameNotPlaying     ErrorCode = "GAME_NOT_PLAYING"
	ErrNotDraftingPhase   ErrorCode = "NOT_DRAFTING_PHASE"
	ErrNotYourTurn        ErrorCode = "NOT_YOUR_TURN"
	ErrAlreadyReady       ErrorCode = "ALREADY_READY"
	ErrNotReady           ErrorCode = "NOT_READY"
	ErrAlreadyPicked      ErrorCode = "ALREADY_PICKED"
	ErrCanStillPlay       ErrorCode = "CAN_STILL_PLAY"

	// Validation violations (never trust client-side checks).
	ErrInvalidCardSelection ErrorCode = "INVALID_CARD_SELECTION"
	ErrWrongPickCount       ErrorCode = "WRONG_PICK_COUNT"
	ErrCardNotInPack        ErrorCode = "CARD_NOT_IN_PACK"
	ErrInvalidPlayMessage   ErrorCode = "INVALID_PLAY_MESSAGE"
	ErrCardNotInHand        ErrorCode = "CARD_NOT_IN_HAND"
	ErrInvalidAction        ErrorCode = "INVALID_ACTION"
	ErrInvalidPosition      ErrorCode = "INVALID_POSITION"
	ErrPositionOccupied     ErrorCode = "POSITION_OCCUPIED"
	ErrInvalidPlacement     ErrorCode = "INVALID_PLACEMENT"
	ErrNoCardToReplace      ErrorCode = "NO_CARD_TO_REPLACE"
	ErrCannotReplaceCard    ErrorCode = "CANNOT_REPLACE_CARD"
	ErrInvalidBaseAction    ErrorCode = "INVALID_BASE_ACTION"
	ErrNotSpecialCard       ErrorCode = "NOT_SPECIAL_CARD"
	ErrInvalidQueenTargets  ErrorCode = "INVALID_QUEEN_TARGETS"
	ErrInvalidExchangeCards ErrorCode = "INVALID_EXCHANGE_CARDS"
	ErrInvalidJackTargets   ErrorCode = "INVALID_JACK_TARGETS"

	// Target-resolution violations.
	ErrPlayerNotFound       ErrorCode = "PLAYER_NOT_FOUND"
	ErrTargetPlayerNotFound ErrorCode = "TARGET_PLAYER_NOT_FOUND"
	ErrCardToGiveNotFound   ErrorCode = "CARD_TO_GIVE_NOT_FOUND"
	ErrTargetHandEmpty      ErrorCode = "TARGET_HAND_EMPTY"

	// Internal failure surfaced at the dispatch boundary.
	ErrPlayCardError ErrorCode = "PLAY_CARD_ERROR"
)
