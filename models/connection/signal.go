package connection

const (
	CodeSessionID uint8 = iota
	CodeReceivedInvalidSessionID

	// Setup
	CodeReset
	CodeSetDifficulty
	CodeRandomizeFleet
	CodePlaceShip
	CodeRemoveShip
	CodeStartGame

	// Play
	CodeFire

	// History panel
	CodeSetHistoryCursor
	CodeToggleHistory

	// Full match view, sent after every change and on request
	CodeState

	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent
)
