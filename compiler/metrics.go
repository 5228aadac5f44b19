package compiler

import "github.com/ethereum/go-ethereum/metrics"

var (
	compiledCounter  = metrics.NewRegisteredCounter("compiler/compiled", nil)
	cacheHitCounter  = metrics.NewRegisteredCounter("compiler/cache/hit", nil)
	cacheMissCounter = metrics.NewRegisteredCounter("compiler/cache/miss", nil)

	compileTimer = metrics.NewRegisteredTimer("compiler/compile", nil)
)
