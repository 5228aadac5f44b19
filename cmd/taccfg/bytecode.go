package main

import (
	"encoding/hex"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// loadBytecode reads the contract code from --code or --file.
func loadBytecode(ctx *cli.Context) ([]byte, error) {
	code, file := ctx.String(codeFlag.Name), ctx.String(fileFlag.Name)
	switch {
	case code != "" && file != "":
		return nil, errors.New("--code and --file are mutually exclusive")
	case code != "":
		return decodeHexString(code)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		return decodeHexString(string(data))
	}
	return nil, errors.New("one of --code or --file is required")
}

// decodeHexString accepts hex with an optional 0x prefix and arbitrary
// whitespace.
func decodeHexString(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		return nil, errors.Errorf("odd length hex string (%d digits)", len(s))
	}
	code, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decode bytecode")
	}
	return code, nil
}
