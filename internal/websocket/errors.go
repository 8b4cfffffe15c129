package websocket

import (
	"errors"
	"fmt"

	"github.com/thereayou/planner-collab/internal/apperr"
)

var (
	ErrClientQueueFull  = errors.New("client message queue is full")
	ErrClientClosed     = errors.New("client connection is closed")
	ErrConnectionClosed = errors.New("connection already disconnected")

	// Rejected client input. All match apperr.ErrInvalid.
	ErrInvalidMessage = fmt.Errorf("%w: invalid message format", apperr.ErrInvalid)
	ErrEmptyRoom      = fmt.Errorf("%w: room is required", apperr.ErrInvalid)
	ErrPrivateRoom    = fmt.Errorf("%w: private room belongs to another user", apperr.ErrInvalid)
)
