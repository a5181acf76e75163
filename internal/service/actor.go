package service

// Actor is the authenticated principal on whose behalf an operation runs.
// It is logged with every state change; Email receives the final offer.
type Actor struct {
	Subject string
	Email   string
}
