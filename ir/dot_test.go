package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlockFormat(t *testing.T) {
	for in, want := range map[string]BlockFormat{
		"":         BlockFormatNone,
		"none":     BlockFormatNone,
		"ByteCode": BlockFormatByteCode,
		"ir":       BlockFormatIR,
	} {
		got, err := ParseBlockFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseBlockFormat("svg")
	assert.Error(t, err)
}

func TestDotBytecode(t *testing.T) {
	p := newProgram(t, corpus["add"])
	dot := p.Dot(BlockFormatByteCode)

	assert.True(t, strings.HasPrefix(dot, "digraph {\n"))
	assert.True(t, strings.HasSuffix(dot, "}\n"))
	for _, line := range []string{
		`    0 [ color=red shape=oval label="Start" ]`,
		`    1 [ color=blue shape=diamond label="Dynamic jump table" ]`,
		`    2 [ color=red shape=oval label="Terminator" ]`,
		`    3 [ color=blue shape=hexagon label="Invalid jump target" ]`,
		`    4 [ color=black shape=rectangle label="Bytecode (0x00, 0x06]\l---\lPUSH1 0x01\lPUSH1 0x02\lADD\lSTOP\l" ]`,
		`    0 -> 4 [ style=solid ]`,
		`    1 -> 3 [ style=dashed ]`,
		`    3 -> 2 [ style=solid ]`,
		`    4 -> 2 [ style=solid ]`,
	} {
		assert.Contains(t, dot, line+"\n")
	}
}

func TestDotIR(t *testing.T) {
	p := newProgram(t, corpus["add"])
	require.NoError(t, p.Optimize())
	dot := p.Dot(BlockFormatIR)

	assert.Contains(t, dot, `label="Bytecode (0x00, 0x06]\l---\lStop()\l"`)
	assert.NotContains(t, dot, "    5 [")
}

func TestDotWithoutBlockBodies(t *testing.T) {
	p := newProgram(t, corpus["selfloop"])
	dot := p.Dot(BlockFormatNone)

	assert.Contains(t, dot, `    4 [ color=black shape=rectangle label="Bytecode (0x00, 0x04]\l---\l" ]`)
	assert.Contains(t, dot, "    1 -> 4 [ style=dashed ]\n")
	assert.Contains(t, dot, "    4 -> 1 [ style=dashed ]\n")
}

func TestFormatBlockIR(t *testing.T) {
	// PUSH1 0x80, PUSH1 0x40, MSTORE, STOP
	p := newProgram(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x00})
	require.NoError(t, p.Optimize())

	out := p.FormatBlock(4, BlockFormatIR)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, `^\*\$\d+_Memory\[bytes1 \$\d+_tmp := 0x40\] = bytes1 \$\d+_tmp := 0x80$`, lines[0])
	assert.Equal(t, "Stop()", lines[1])
}

func TestBlockStats(t *testing.T) {
	p := newProgram(t, prologue)
	require.NoError(t, p.Optimize())

	stats := p.BlockStats()
	require.Len(t, stats, 3)
	assert.Equal(t, BlockStat{
		Node: 4, StartOffset: 0, EndOffset: 11, Opcodes: 8, Instructions: 5,
		Symbols: len(p.SymbolTable.SymbolsIn(4)), Arguments: 0, Height: 1, Generates: 1, Lifted: true,
	}, stats[0])
	assert.Equal(t, 11, stats[1].StartOffset)
	assert.Equal(t, 15, stats[2].StartOffset)
	assert.Equal(t, 18, stats[2].EndOffset)
	assert.Equal(t, int32(-1), stats[2].Height)
}
