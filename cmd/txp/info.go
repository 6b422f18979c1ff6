// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/woozymasta/txp"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.txp>",
	Short: "List textures, layers and mipmaps of an atlas",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	atlas, err := loadAtlas(cmd, args[0])
	if err != nil {
		return err
	}

	return printAtlas(cmd.OutOrStdout(), atlas)
}

// loadAtlas reads and parses an atlas file using the global flags.
func loadAtlas(cmd *cobra.Command, path string) (*txp.Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}

	strict, _ := cmd.Flags().GetBool("strict")
	atlas, err := txp.ParseWithOptions(data, &txp.ParseOptions{
		Logger:       newLogger(cmd),
		StrictLayers: strict,
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return atlas, nil
}

func printAtlas(w io.Writer, atlas *txp.Atlas) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i := range atlas.Textures {
		tex := &atlas.Textures[i]

		kind := "texture"
		switch {
		case tex.IsCubemap():
			kind = "cubemap"
		case tex.IsYCbCr():
			kind = "ycbcr"
		case len(tex.Subtextures) > 1:
			kind = "array"
		}
		fmt.Fprintf(tw, "Texture #%d\t%s\t%d subtexture(s)\n", i+1, kind, len(tex.Subtextures))

		for j := range tex.Subtextures {
			sub := &tex.Subtextures[j]
			if len(tex.Subtextures) > 1 {
				fmt.Fprintf(tw, "  Subtexture #%d\t%d mipmap(s)\n", j+1, len(sub.Mipmaps))
			}
			for k := range sub.Mipmaps {
				m := &sub.Mipmaps[k]
				fmt.Fprintf(tw, "    #%d\t%dx%d\t%s\t%d bytes\n", k+1, m.Width, m.Height, m.Format, len(m.Data))
			}
		}
	}

	return tw.Flush()
}
