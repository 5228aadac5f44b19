package compiler

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"

	"github.com/paritytech/revive-sub001/ir"
)

// programCache keeps compiled programs by the keccak256 hash of their code.
type programCache struct {
	programs *lru.Cache[common.Hash, *ir.Program]
}

func newProgramCache(size int) *programCache {
	return &programCache{
		programs: lru.NewCache[common.Hash, *ir.Program](size),
	}
}

func (c *programCache) get(hash common.Hash) (*ir.Program, bool) {
	p, ok := c.programs.Get(hash)
	if ok {
		cacheHitCounter.Inc(1)
	} else {
		cacheMissCounter.Inc(1)
	}
	return p, ok
}

func (c *programCache) add(hash common.Hash, p *ir.Program) {
	if p == nil {
		return
	}
	c.programs.Add(hash, p)
}

func (c *programCache) remove(hash common.Hash) {
	c.programs.Remove(hash)
}

func (c *programCache) len() int {
	return c.programs.Len()
}
