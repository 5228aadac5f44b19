// Package compiler drives the IR builder: it decodes contract bytecode, builds
// and optimizes the control-flow graph and caches the result by code hash.
package compiler

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"

	"github.com/paritytech/revive-sub001/evm"
	"github.com/paritytech/revive-sub001/ir"
)

// ErrReleased is returned by CompileAll after Release.
var ErrReleased = errors.New("compiler released")

// Compiler builds programs for contract bytecode. Programs are shared through
// the cache and must not be modified by callers.
type Compiler struct {
	config Config
	cache  *programCache
	pool   *ants.Pool
}

// New creates a compiler with its own cache and worker pool.
func New(config Config) (*Compiler, error) {
	config = config.sanitize()
	pool, err := ants.NewPool(config.Workers, ants.WithExpiryDuration(10*time.Second))
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	log.Debug("Created compiler", "cache", config.CacheSize, "workers", config.Workers, "optimize", config.Optimize)
	return &Compiler{
		config: config,
		cache:  newProgramCache(config.CacheSize),
		pool:   pool,
	}, nil
}

// Config returns the sanitized configuration in use.
func (c *Compiler) Config() Config {
	return c.config
}

// Compile returns the program for code, building it on a cache miss.
func (c *Compiler) Compile(code []byte) (*ir.Program, error) {
	hash := crypto.Keccak256Hash(code)
	if p, ok := c.cache.get(hash); ok {
		return p, nil
	}
	p, err := c.build(hash, code)
	if err != nil {
		return nil, err
	}
	c.cache.add(hash, p)
	return p, nil
}

func (c *Compiler) build(hash common.Hash, code []byte) (*ir.Program, error) {
	start := time.Now()

	p, err := ir.NewProgram(evm.Decode(code))
	if err != nil {
		return nil, errors.Wrapf(err, "build %x", hash)
	}
	if c.config.Optimize {
		if err := p.Optimize(); err != nil {
			return nil, errors.Wrapf(err, "optimize %x", hash)
		}
	}
	compiledCounter.Inc(1)
	compileTimer.UpdateSince(start)

	log.Debug("Compiled contract", "hash", hash, "size", len(code), "blocks", len(p.Blocks()),
		"gaps", len(p.Gaps), "elapsed", common.PrettyDuration(time.Since(start)))
	return p, nil
}

// CompileAll compiles independent contracts on the worker pool. The programs
// are returned in input order; on failure the error of the first failing
// contract is returned.
func (c *Compiler) CompileAll(codes [][]byte) ([]*ir.Program, error) {
	var (
		wg       sync.WaitGroup
		programs = make([]*ir.Program, len(codes))
		errs     = make([]error, len(codes))
	)
	for i := range codes {
		i := i
		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()
			programs[i], errs[i] = c.Compile(codes[i])
		})
		if err != nil {
			wg.Done()
			if errors.Is(err, ants.ErrPoolClosed) {
				err = ErrReleased
			}
			errs[i] = err
			break
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "contract %d", i)
		}
	}
	return programs, nil
}

// Forget drops the cached program of code, if any.
func (c *Compiler) Forget(code []byte) {
	c.cache.remove(crypto.Keccak256Hash(code))
}

// Cached returns the number of programs in the cache.
func (c *Compiler) Cached() int {
	return c.cache.len()
}

// Release stops the worker pool. Compile keeps working afterwards, CompileAll
// does not.
func (c *Compiler) Release() {
	c.pool.Release()
}
