package sinks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/weegigs/wee-host-go/host"
)

var _ host.Sink = (*Log)(nil)

// Log writes each message as an info record on a zerolog logger.
type Log struct {
	log *zerolog.Logger
}

func NewLog(log *zerolog.Logger) *Log {
	return &Log{log: log}
}

func (s *Log) Emit(ctx context.Context, message string) error {
	s.log.Info().Str("sink", "log").Msg(message)
	return nil
}
