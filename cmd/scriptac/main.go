// Copyright 2023 Jesus Ruiz. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/jxxcarlson/scripta/scripta"
)

var debug bool

func main() {
	app := &cli.App{
		Name:      "scriptac",
		Version:   "v0.1",
		Compiled:  time.Now(),
		Usage:     "compile a Scripta document into a numbered, cross-referenced forest",
		UsageText: "scriptac compile [options] INPUT_FILE",
		Commands: []*cli.Command{
			{
				Name:      "compile",
				Usage:     "compile INPUT_FILE and print its diagnostics and block labels",
				ArgsUsage: "INPUT_FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-level",
						Value: 4,
						Usage: "section depth at which the block counter resets",
					},
					&cli.BoolFlag{
						Name:  "suppress-document-blocks",
						Usage: "drop any tree whose root is a document or title block",
					},
					&cli.BoolFlag{
						Name:    "debug",
						Aliases: []string{"d"},
						Usage:   "run in debug mode (development logging)",
					},
				},
				Action: compileCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func compileCommand(c *cli.Context) error {
	if !c.Args().Present() {
		return fmt.Errorf("no input file provided")
	}
	inputFileName := c.Args().First()

	debug = c.Bool("debug")
	var z *zap.Logger
	var err error
	if debug {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	sugared := z.Sugar()
	defer sugared.Sync()
	scripta.SetLogger(sugared)

	source, err := os.ReadFile(inputFileName)
	if err != nil {
		return err
	}

	params := scripta.DefaultParameters()
	params.MaxLevel = c.Int("max-level")
	if c.Bool("suppress-document-blocks") {
		params.Filter = scripta.SuppressDocumentBlocks
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	output := scripta.Compile(ctx, params, string(source))

	fmt.Printf("compiled %s\n", inputFileName)

	scripta.WalkDepthFirst(output.Forest, func(n *scripta.Tree[scripta.ExpressionBlock]) {
		b := n.Value
		label := b.Properties["label"]
		if label == "" {
			fmt.Printf("  %-12s %s\n", b.Heading.Name, b.Properties["id"])
		} else {
			fmt.Printf("  %-12s %-10s %s\n", b.Heading.Name, label, b.Properties["id"])
		}
	})

	if msgs := output.Diagnostics(); len(msgs) > 0 {
		fmt.Println("diagnostics:")
		for _, m := range msgs {
			fmt.Printf("  line %d: %s\n", m.LineNumber, m.Text)
		}
	}

	return nil
}
