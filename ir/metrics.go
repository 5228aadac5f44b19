package ir

import "github.com/ethereum/go-ethereum/metrics"

var (
	loweringGapCounter = metrics.NewRegisteredCounter("ir/lower/gaps", nil)

	deadBlockCounter       = metrics.NewRegisteredCounter("ir/dce/blocks", nil)
	deadInstructionCounter = metrics.NewRegisteredCounter("ir/dce/instructions", nil)

	liftedBlockCounter = metrics.NewRegisteredCounter("ir/lift/blocks", nil)
	staticJumpCounter  = metrics.NewRegisteredCounter("ir/lift/staticjumps", nil)

	optimizeTimer = metrics.NewRegisteredTimer("ir/optimize", nil)
)
