package auth

// Account is a row of the identity store: the credentials a person logs in with.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
}

// Identity is the authenticated caller. Handlers pass it explicitly into every
// service call instead of reading ambient request state.
type Identity struct {
	AccountID string
	Username  string
	SessionID string
}
