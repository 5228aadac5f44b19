package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/paritytech/revive-sub001/compiler"
	"github.com/paritytech/revive-sub001/evm"
	"github.com/paritytech/revive-sub001/ir"
)

var (
	irCommand = &cli.Command{
		Action: printIR,
		Name:   "ir",
		Usage:  "Print the three-address code of every block",
		Flags:  inputFlags,
		Description: `
The ir command lowers the bytecode, optionally optimizes it, and prints the
instructions of each block in bytecode order, followed by the opcodes that
have no lowering.`,
	}
	dotCommand = &cli.Command{
		Action: drawGraph,
		Name:   "dot",
		Usage:  "Render the control-flow graph as GraphViz DOT or SVG",
		Flags:  append([]cli.Flag{formatFlag, outFlag}, inputFlags...),
		Description: `
The dot command writes the graph in DOT format. When --out ends in .svg the
graph is rendered with the graphviz dot binary, which must be in PATH.`,
	}
	statsCommand = &cli.Command{
		Action: printStats,
		Name:   "stats",
		Usage:  "Print per-block statistics",
		Flags:  inputFlags,
	}
	disasmCommand = &cli.Command{
		Action: disassemble,
		Name:   "disasm",
		Usage:  "Print the decoded opcode stream",
		Flags:  []cli.Flag{codeFlag, fileFlag},
	}
	dumpConfigCommand = &cli.Command{
		Action: dumpConfig,
		Name:   "dumpconfig",
		Usage:  "Show the effective configuration",
		Flags:  []cli.Flag{optimizeFlag},
	}
)

// compile loads the input and builds its program with the configured compiler.
func compile(ctx *cli.Context) (*ir.Program, error) {
	code, err := loadBytecode(ctx)
	if err != nil {
		return nil, err
	}
	c, err := compiler.New(configOf(ctx).Compiler)
	if err != nil {
		return nil, err
	}
	defer c.Release()
	return c.Compile(code)
}

func printIR(ctx *cli.Context) error {
	p, err := compile(ctx)
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	for _, stat := range p.BlockStats() {
		fmt.Fprintf(w, "block %d (0x%02x, 0x%02x] arguments=%d height=%d\n",
			stat.Node, stat.StartOffset, stat.EndOffset, stat.Arguments, stat.Height)
		body := p.FormatBlock(stat.Node, ir.BlockFormatIR)
		for _, line := range strings.Split(strings.TrimSuffix(body, "\n"), "\n") {
			if line != "" {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
	for _, gap := range p.Gaps {
		fmt.Fprintf(w, "gap 0x%04x: %v\n", gap.Offset, gap.Op)
	}
	return nil
}

func drawGraph(ctx *cli.Context) error {
	format, err := ir.ParseBlockFormat(ctx.String(formatFlag.Name))
	if err != nil {
		return err
	}
	p, err := compile(ctx)
	if err != nil {
		return err
	}
	dot := []byte(p.Dot(format))

	out := ctx.String(outFlag.Name)
	if strings.ToLower(filepath.Ext(out)) == ".svg" {
		svg, err := renderSVG(dot)
		if err != nil {
			return err
		}
		return os.WriteFile(out, svg, 0o644)
	}
	if out == "" {
		_, err := ctx.App.Writer.Write(dot)
		return err
	}
	return os.WriteFile(out, dot, 0o644)
}

func renderSVG(dot []byte) ([]byte, error) {
	if _, err := exec.LookPath("dot"); err != nil {
		return nil, errors.New("dot not found in PATH; install graphviz or write a .dot file")
	}
	var svg bytes.Buffer
	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = bytes.NewReader(dot)
	cmd.Stdout = &svg
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(err, "dot render")
	}
	log.Debug("Rendered SVG", "bytes", svg.Len())
	return svg.Bytes(), nil
}

func printStats(ctx *cli.Context) error {
	p, err := compile(ctx)
	if err != nil {
		return err
	}
	writeBlockTable(ctx.App.Writer, p)

	if len(p.Stats) > 0 {
		passes := maps.Keys(p.Stats)
		slices.Sort(passes)
		for _, name := range passes {
			fmt.Fprintf(ctx.App.Writer, "%s: %d changes\n", name, p.Stats[name])
		}
	}
	return nil
}

func writeBlockTable(w io.Writer, p *ir.Program) {
	var (
		rows  [][]string
		total ir.BlockStat
	)
	for _, s := range p.BlockStats() {
		rows = append(rows, []string{
			strconv.Itoa(int(s.Node)),
			fmt.Sprintf("0x%02x..0x%02x", s.StartOffset, s.EndOffset),
			strconv.Itoa(s.Opcodes),
			strconv.Itoa(s.Instructions),
			strconv.Itoa(s.Arguments),
			strconv.Itoa(int(s.Height)),
			strconv.Itoa(s.Generates),
		})
		total.Opcodes += s.Opcodes
		total.Instructions += s.Instructions
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Block", "Offsets", "Opcodes", "Instructions", "Arguments", "Height", "Generates"})
	table.SetFooter([]string{"", "Total", strconv.Itoa(total.Opcodes), strconv.Itoa(total.Instructions), "", "", ""})
	table.AppendBulk(rows)
	table.Render()
}

func disassemble(ctx *cli.Context) error {
	code, err := loadBytecode(ctx)
	if err != nil {
		return err
	}
	_, err = io.WriteString(ctx.App.Writer, evm.Disassemble(evm.Decode(code)))
	return err
}
