package core

import (
	"context"
)

// Session access token session
type Session interface {
	// Login return the owner id carried by the token
	Login(ctx context.Context, accessToken string) (string, error)
}
