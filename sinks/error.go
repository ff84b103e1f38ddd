package sinks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/weegigs/wee-host-go/host"
)

var _ host.Sink = (*Error)(nil)

// Error writes each message as an error record on a zerolog logger.
type Error struct {
	log *zerolog.Logger
}

func NewError(log *zerolog.Logger) *Error {
	return &Error{log: log}
}

func (s *Error) Emit(ctx context.Context, message string) error {
	s.log.Error().Str("sink", "error").Msg(message)
	return nil
}
