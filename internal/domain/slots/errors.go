package slots

import (
	"errors"

	"github.com/ellavondegurechaff/slotbot/internal/domain/credential"
)

var (
	ErrNotFound       = errors.New("slot not found")
	ErrDuplicateOwner = errors.New("user already owns a live slot")
	ErrUnauthorized   = errors.New("not allowed to manage this slot")
	ErrMalformedToken = credential.ErrMalformedToken
	ErrExpired        = errors.New("slot has expired")
	ErrAlreadyExists  = errors.New("a channel with that name already exists")
	ErrProvisioning   = errors.New("external provisioning failed")
	ErrInvalidRequest = errors.New("invalid slot request")
)
