// Package log provides the leveled logging interface used by the invocation
// core and its cache/limiter decorators.
//
// Two implementations ship with the package: StdLogger, backed by the standard
// library, and GologLogger, a thin wrapper around github.com/kataras/golog for
// applications already using it. A package-level default logger is used by any
// component that is not given a logger explicitly:
//
//	log.SetDefault(log.NewStdLogger(log.LevelDebug))
//
// Messages below the configured level are filtered out before formatting.
package log
