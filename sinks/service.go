package sinks

import "github.com/google/wire"

var Console = wire.NewSet(NewLog, NewError, ConsoleToast)
