// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game stream.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidGameIDError  = 3003 // Game in the WS URL does not exist or could not be loaded.
	BattleFailedError   = 3004 // The battle could not be resolved; the game was left unchanged.
)
