package app

import (
	"github.com/rs/zerolog/log"
	"go.uber.org/fx/fxevent"
)

// eventLogger writes fx lifecycle events to the global zerolog logger.
type eventLogger struct{}

var _ fxevent.Logger = (*eventLogger)(nil)

func (*eventLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			log.Error().Err(e.Err).Str("callee", e.FunctionName).Msg("start hook failed")
			return
		}
		log.Debug().Str("callee", e.FunctionName).Dur("runtime", e.Runtime).Msg("start hook executed")
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			log.Error().Err(e.Err).Str("callee", e.FunctionName).Msg("stop hook failed")
			return
		}
		log.Debug().Str("callee", e.FunctionName).Dur("runtime", e.Runtime).Msg("stop hook executed")
	case *fxevent.Provided:
		if e.Err != nil {
			log.Error().Err(e.Err).Str("constructor", e.ConstructorName).Msg("provide failed")
			return
		}
		for _, name := range e.OutputTypeNames {
			log.Debug().Str("type", name).Str("constructor", e.ConstructorName).Msg("provided")
		}
	case *fxevent.Invoked:
		if e.Err != nil {
			log.Error().Err(e.Err).Str("function", e.FunctionName).Msg("invoke failed")
		}
	case *fxevent.RollingBack:
		log.Error().Err(e.StartErr).Msg("start failed, rolling back")
	case *fxevent.Started:
		if e.Err != nil {
			log.Error().Err(e.Err).Msg("start failed")
			return
		}
		log.Debug().Msg("application started")
	case *fxevent.Stopped:
		if e.Err != nil {
			log.Error().Err(e.Err).Msg("stop failed")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			log.Error().Err(e.Err).Msg("fx logger init failed")
		}
	}
}
