package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Error taxonomy
// --------------------------------------------------------------------------

var (
	// ErrConfiguration marks a malformed connection descriptor or setting.
	// Fatal to publisher construction, never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrTransportOpen marks a failure to create, bind or connect the socket.
	// Fatal to publisher construction, never retried.
	ErrTransportOpen = errors.New("transport open failed")

	// ErrUnsupportedDataType marks a frame whose data type has no wire mapping.
	// The frame is counted as a transport drop.
	ErrUnsupportedDataType = errors.New("unsupported data type")

	// ErrSendFailure is the parent of all non-blocking send rejections.
	// The frame is counted as a transport drop.
	ErrSendFailure = errors.New("transport send failure")

	ErrQueueFull    = fmt.Errorf("%w: send queue full", ErrSendFailure)
	ErrNoPeer       = fmt.Errorf("%w: no connected peer", ErrSendFailure)
	ErrSocketClosed = fmt.Errorf("%w: socket closed", ErrSendFailure)
)

// DescriptorError describes why a connection descriptor could not be resolved
type DescriptorError struct {
	Input  string
	Token  string
	Reason string
}

func (e *DescriptorError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("invalid connection descriptor %q: %s %q", e.Input, e.Reason, e.Token)
	}
	return fmt.Sprintf("invalid connection descriptor %q: %s", e.Input, e.Reason)
}

// Unwrap makes every DescriptorError match ErrConfiguration
func (e *DescriptorError) Unwrap() error {
	return ErrConfiguration
}
