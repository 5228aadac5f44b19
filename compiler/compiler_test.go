package compiler

import (
	"runtime"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// store the free memory pointer, revert on value, jump to 0x0f
	prologue = common.FromHex("6080604052348015600f57600080fd5b5000")
	adder    = common.FromHex("600160020100")
	loop     = common.FromHex("5b600056")
)

func newCompiler(t *testing.T, config Config) *Compiler {
	t.Helper()
	c, err := New(config)
	require.NoError(t, err)
	t.Cleanup(c.Release)
	return c
}

func TestConfigSanitize(t *testing.T) {
	c := newCompiler(t, Config{})
	assert.Equal(t, Config{CacheSize: 1024, Workers: runtime.NumCPU()}, c.Config())

	c = newCompiler(t, Config{CacheSize: 3, Workers: 2, Optimize: true})
	assert.Equal(t, Config{CacheSize: 3, Workers: 2, Optimize: true}, c.Config())
}

func TestCompileCachesByCodeHash(t *testing.T) {
	c := newCompiler(t, Defaults)

	p1, err := c.Compile(prologue)
	require.NoError(t, err)
	p2, err := c.Compile(append([]byte(nil), prologue...))
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	assert.Equal(t, 1, c.Cached())

	c.Forget(prologue)
	assert.Equal(t, 0, c.Cached())
	p3, err := c.Compile(prologue)
	require.NoError(t, err)
	assert.NotSame(t, p1, p3)
	assert.Equal(t, p1.Stats, p3.Stats)
}

func TestCompileOptimizes(t *testing.T) {
	c := newCompiler(t, Defaults)
	p, err := c.Compile(adder)
	require.NoError(t, err)

	assert.Equal(t, 1, p.Stats["lift"])
	require.Len(t, p.Blocks(), 1)
	assert.True(t, p.Block(p.Blocks()[0]).Lifted)
}

func TestCompileWithoutOptimize(t *testing.T) {
	c := newCompiler(t, Config{CacheSize: 8, Workers: 1})
	p, err := c.Compile(adder)
	require.NoError(t, err)

	assert.Empty(t, p.Stats)
	for _, n := range p.Blocks() {
		assert.False(t, p.Block(n).Lifted)
	}
	assert.NotEmpty(t, p.Block(p.Blocks()[0]).Instructions)
}

func TestCompileEmptyCode(t *testing.T) {
	c := newCompiler(t, Defaults)
	p, err := c.Compile(nil)
	require.NoError(t, err)
	assert.Empty(t, p.EvmInstructions)
}

func TestCacheEviction(t *testing.T) {
	c := newCompiler(t, Config{CacheSize: 1, Workers: 1, Optimize: true})

	first, err := c.Compile(adder)
	require.NoError(t, err)
	_, err = c.Compile(loop)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Cached())

	again, err := c.Compile(adder)
	require.NoError(t, err)
	assert.NotSame(t, first, again)
}

func TestCompileAllKeepsOrder(t *testing.T) {
	c := newCompiler(t, Config{CacheSize: 16, Workers: 4, Optimize: true})
	codes := [][]byte{prologue, adder, loop, prologue, nil}

	programs, err := c.CompileAll(codes)
	require.NoError(t, err)
	require.Len(t, programs, len(codes))
	for i, code := range codes {
		want, err := c.Compile(code)
		require.NoError(t, err)
		assert.Equal(t, want.EvmInstructions, programs[i].EvmInstructions, "contract %d", i)
	}
	assert.Equal(t, 4, c.Cached())
}

func TestCompileAllAfterRelease(t *testing.T) {
	c, err := New(Config{CacheSize: 4, Workers: 1})
	require.NoError(t, err)
	c.Release()

	_, err = c.CompileAll([][]byte{adder})
	assert.ErrorIs(t, err, ErrReleased)

	_, err = c.Compile(adder)
	assert.NoError(t, err)
}
