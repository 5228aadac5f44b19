package compiler

import (
	"runtime"

	"github.com/ethereum/go-ethereum/log"
)

// Config controls the compiler driver.
type Config struct {
	// CacheSize is the number of compiled programs kept by code hash.
	CacheSize int
	// Workers bounds the number of contracts CompileAll builds in parallel.
	Workers int
	// Optimize runs the optimization passes after lowering.
	Optimize bool
}

// Defaults contains the default compiler settings.
var Defaults = Config{
	CacheSize: 1024,
	Workers:   runtime.NumCPU(),
	Optimize:  true,
}

// sanitize replaces unusable values with their defaults.
func (c Config) sanitize() Config {
	conf := c
	if conf.CacheSize <= 0 {
		log.Warn("Sanitizing invalid compiler cache size", "provided", conf.CacheSize, "updated", Defaults.CacheSize)
		conf.CacheSize = Defaults.CacheSize
	}
	if conf.Workers <= 0 {
		log.Warn("Sanitizing invalid compiler worker count", "provided", conf.Workers, "updated", Defaults.Workers)
		conf.Workers = Defaults.Workers
	}
	return conf
}
