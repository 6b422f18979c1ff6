// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/txp

package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/spf13/cobra"
	"github.com/woozymasta/txp"
	"golang.org/x/image/bmp"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.txp>",
	Short: "Extract every texture of an atlas",
	Long: `Extract every texture of an atlas into a directory.

Container formats (dds, edds) write one file per texture. Raster formats
write the largest mipmap of every subtexture; YCbCr textures are converted
to color first. Textures without a raster form are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "Output directory (default: input path without extension)")
	extractCmd.Flags().StringP("format", "f", "png", "Output format: png, webp, bmp, tga, dds, edds")
	extractCmd.Flags().Bool("flip", true, "Flip raster images vertically")
	extractCmd.Flags().Bool("compress", true, "Use LZ4 blocks for edds output")
}

// encoders maps raster output formats to their encoders.
var encoders = map[string]func(io.Writer, image.Image) error{
	"png": png.Encode,
	"bmp": bmp.Encode,
	"tga": tga.Encode,
	"webp": func(w io.Writer, img image.Image) error {
		return nativewebp.Encode(w, img, nil)
	},
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputDir, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	flip, _ := cmd.Flags().GetBool("flip")
	compress, _ := cmd.Flags().GetBool("compress")

	format = strings.ToLower(format)
	if _, ok := encoders[format]; !ok && format != "dds" && format != "edds" {
		return fmt.Errorf("unknown output format %q", format)
	}

	atlas, err := loadAtlas(cmd, inputPath)
	if err != nil {
		return err
	}

	if outputDir == "" {
		outputDir = strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	log := newLogger(cmd)
	for i := range atlas.Textures {
		tex := &atlas.Textures[i]

		switch format {
		case "dds":
			path := filepath.Join(outputDir, fmt.Sprintf("tex%d.dds", i))
			if err := txp.WriteDDSFile(path, tex); err != nil {
				log.Warn("skip texture", "index", i, "err", err)
				continue
			}
			log.Info("written", "path", path)

		case "edds":
			path := filepath.Join(outputDir, fmt.Sprintf("tex%d.edds", i))
			if err := writeEDDS(path, tex, &txp.EDDSOptions{Compress: compress, Logger: log}); err != nil {
				log.Warn("skip texture", "index", i, "err", err)
				continue
			}
			log.Info("written", "path", path)

		default:
			if err := extractRaster(log, outputDir, i, tex, format, flip); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeEDDS(path string, tex *txp.Texture, opts *txp.EDDSOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return tex.WriteEDDS(f, opts)
}

// extractRaster writes the level-0 image of every subtexture of tex.
func extractRaster(log *slog.Logger, dir string, index int, tex *txp.Texture, format string, flip bool) error {
	if tex.IsYCbCr() {
		img, err := tex.Subtextures[0].YCbCrImage()
		if err != nil {
			log.Warn("skip texture", "index", index, "err", err)
			return nil
		}
		return saveImage(log, filepath.Join(dir, fmt.Sprintf("tex%d.%s", index, format)), img, format, flip)
	}

	for j := range tex.Subtextures {
		sub := &tex.Subtextures[j]
		if len(sub.Mipmaps) == 0 {
			continue
		}

		name := fmt.Sprintf("tex%d.%s", index, format)
		if len(tex.Subtextures) > 1 {
			name = fmt.Sprintf("tex%d_sub%d.%s", index, j, format)
		}

		img, ok := sub.Mipmaps[0].Image()
		if !ok {
			log.Warn("no raster form", "texture", index, "subtexture", j, "format", sub.Mipmaps[0].Format)
			continue
		}
		if err := saveImage(log, filepath.Join(dir, name), img, format, flip); err != nil {
			return err
		}
	}

	return nil
}

func saveImage(log *slog.Logger, path string, img image.Image, format string, flip bool) error {
	if flip {
		img = txp.FlipVertical(img)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := encoders[format](f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	log.Info("written", "path", path)

	return nil
}
