package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
	"github.com/L1TangDingZhen/BOX-P/pkg/render/nodelink"
	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
	"github.com/L1TangDingZhen/BOX-P/pkg/stratify"
)

// Layer output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatDOT   = "dot"
	formatSVG   = "svg"
)

type layersOptions struct {
	mode       string
	multilevel bool
	keepEmpty  bool
	minLayers  int
	format     string
	output     string
	detailed   bool
	noCache    bool
}

// layersCommand groups a task's boxes into display layers.
func (c *CLI) layersCommand() *cobra.Command {
	var opts layersOptions

	cmd := &cobra.Command{
		Use:   "layers [task.json]",
		Short: "Group boxes into layers by what rests on what",
		Long: `Group boxes into layers by what rests on what.

A box rests on another when it sits higher and their footprints overlap.
In single-level mode (the default) boxes on the ground form layer 0 and
everything resting on another box forms layer 1. In multi-level mode each
box sits one layer above the highest box beneath it.

Formats:
  table  layers as a table (default)
  json   layers as JSON
  dot    support graph as Graphviz DOT
  svg    support graph rendered to SVG`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayers(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "", "layering mode: single, multi (default: from config)")
	cmd.Flags().BoolVar(&opts.multilevel, "multilevel", false, "shorthand for --mode multi")
	cmd.Flags().BoolVar(&opts.keepEmpty, "keep-empty", false, "keep empty layers")
	cmd.Flags().IntVar(&opts.minLayers, "min-layers", 0, "pad to at least this many layers (with --keep-empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format: table, json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show box details in dot/svg node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render svg without the cache")
	return cmd
}

func (c *CLI) runLayers(cmd *cobra.Command, path string, opts layersOptions) error {
	switch opts.format {
	case formatTable, formatJSON, formatDOT, formatSVG:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want table, json, dot or svg)", opts.format)
	}

	l, err := c.openTask(path)
	if err != nil {
		return err
	}

	layerOpts := l.sess.Layers()
	if cmd.Flags().Changed("keep-empty") {
		layerOpts.KeepEmpty = opts.keepEmpty
	}
	if cmd.Flags().Changed("min-layers") {
		layerOpts.MinLayers = opts.minLayers
	}
	switch {
	case opts.multilevel:
		layerOpts.Mode = stratify.ModeMultiLevel
	case opts.mode != "":
		if layerOpts.Mode, err = stratify.ParseMode(opts.mode); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.output, err)
		}
		defer f.Close()
		w = f
	}

	boxes := l.sess.Boxes()
	switch opts.format {
	case formatTable:
		layers := l.sess.StratifyWith(layerOpts)
		byID := make(map[string]spatial.Box, len(boxes))
		for _, b := range boxes {
			byID[b.ID] = b
		}
		fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("%d layer(s), %s mode", len(layers), layerOpts.Mode)))
		if len(layers) > 0 {
			fmt.Fprintln(w, layerTable(layers, byID))
		}
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(l.sess.StratifyWith(layerOpts)); err != nil {
			return fmt.Errorf("encode layers: %w", err)
		}
	default:
		g := stratify.Graph(boxes, layerOpts.Mode, true)
		dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed})
		if opts.format == formatDOT {
			if _, err := io.WriteString(w, dot); err != nil {
				return err
			}
			break
		}

		cc := c.newCache(opts.noCache)
		defer cc.Close()

		spinner := newSpinnerWithContext(cmd.Context(), "Rendering support graph...")
		spinner.Start()
		svg, hit, err := nodelink.RenderSVGCached(cmd.Context(), cc, dot, svgCacheTTL)
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return fmt.Errorf("render svg: %w", err)
		}
		spinner.Stop()
		c.Logger.Debug("rendered support graph", "cached", hit)
		if _, err := w.Write(svg); err != nil {
			return err
		}
	}

	if opts.output != "" {
		printSuccess("Wrote %s layers", opts.format)
		printFile(opts.output)
	}
	return nil
}
