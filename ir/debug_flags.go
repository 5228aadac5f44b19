package ir

import (
	"os"

	"github.com/ethereum/go-ethereum/log"
)

// DebugLogsEnabled toggles verbose per-block logging of the IR builder and
// passes. Off unless IR_DEBUG is set or a caller enables it.
var DebugLogsEnabled = false

func init() {
	if os.Getenv("IR_DEBUG") == "1" || os.Getenv("IR_DEBUG") == "true" {
		DebugLogsEnabled = true
	}
}

// EnableDebugLogs toggles all IR debug logs.
func EnableDebugLogs(on bool) { DebugLogsEnabled = on }

func debugInfo(msg string, ctx ...interface{}) {
	if DebugLogsEnabled {
		log.Info(msg, ctx...)
	}
}

func debugWarn(msg string, ctx ...interface{}) {
	if DebugLogsEnabled {
		log.Warn(msg, ctx...)
	}
}

func debugError(msg string, ctx ...interface{}) {
	if DebugLogsEnabled {
		log.Error(msg, ctx...)
	}
}
