package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
	"github.com/L1TangDingZhen/BOX-P/pkg/placement"
	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
	"github.com/L1TangDingZhen/BOX-P/pkg/task"
)

// initCommand creates a new, empty task file.
func (c *CLI) initCommand() *cobra.Command {
	var (
		container string
		id        int
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init [task.json]",
		Short: "Create an empty task file",
		Long: `Create an empty task file.

The container defaults to the one in the config file (10×10×10 unless
configured). Use --container to set it explicitly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if fileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			box := cfg.ContainerValue()
			if container != "" {
				if box, err = parseContainer(container); err != nil {
					return err
				}
			}

			t := task.New(id)
			t.SpaceInfo = task.XYZ{X: box.X, Y: box.Y, Z: box.Z}
			if err := task.ExportJSON(t, path); err != nil {
				return fmt.Errorf("write task %s: %w", path, err)
			}

			printSuccess("Created task with container %s", box)
			printFile(path)
			printNewline()
			printNextStep("Place a box", appName+" place "+path+" --at 0,0,0 --size 2,2,2")
			return nil
		},
	}

	cmd.Flags().StringVar(&container, "container", "", "container size as x,y,z")
	cmd.Flags().IntVar(&id, "id", 1, "task id")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// placeCommand places one box into a task.
func (c *CLI) placeCommand() *cobra.Command {
	var (
		at, size, name, color string
		faceUp, fragile       bool
		dryRun                bool
	)

	cmd := &cobra.Command{
		Use:   "place [task.json]",
		Short: "Place a box in a task",
		Long: `Place a box in a task.

The box is accepted only if it lies entirely inside the container and does
not overlap any placed box. Boxes may touch faces. With --dry-run the
placement is checked but the task file is not changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parseTriple(at)
			if err != nil {
				return fmt.Errorf("--at: %w", err)
			}
			dims, err := parseTriple(size)
			if err != nil {
				return fmt.Errorf("--size: %w", err)
			}

			l, err := c.openTask(args[0])
			if err != nil {
				return err
			}
			cand := placement.Candidate{
				Name:        name,
				Position:    geom.Vec3{X: pos[0], Y: pos[1], Z: pos[2]},
				Size:        geom.Size{Width: dims[0], Height: dims[1], Depth: dims[2]},
				Constraints: spatial.Constraints(faceUp, fragile),
				Color:       color,
			}

			if dryRun {
				if err := l.sess.Check(cand); err != nil {
					printError("%s", err)
					return err
				}
				printSuccess("Box fits as %s", l.sess.NextID())
				return nil
			}

			b, err := l.sess.TryPlace(cand)
			if err != nil {
				printError("%s", err)
				return err
			}
			if err := l.save(); err != nil {
				return err
			}

			printSuccess("Placed %s", describeBox(b))
			l.warnDropped()
			printStats(l.sess.Len(), l.sess.Utilization(), 0)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "position of the minimum corner as x,y,z")
	cmd.Flags().StringVar(&size, "size", "", "box size as width,height,depth")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&color, "color", "", "color as #rrggbb (default: random unused color)")
	cmd.Flags().BoolVar(&faceUp, "face-up", false, "mark the box face up")
	cmd.Flags().BoolVar(&fragile, "fragile", false, "mark the box fragile")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "check the placement without saving")
	_ = cmd.MarkFlagRequired("at")
	_ = cmd.MarkFlagRequired("size")
	return cmd
}

// removeCommand removes a box from a task.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [task.json] [id]",
		Short: "Remove a box from a task",
		Long: `Remove a box from a task.

The box is identified by its id (e.g. item0002) or by its order id in the
task file (e.g. 2).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.openTask(args[0])
			if err != nil {
				return err
			}
			id, err := l.resolveBox(args[1])
			if err != nil {
				return err
			}
			b, _ := l.sess.Box(id)
			if err := l.sess.Remove(id); err != nil {
				return err
			}
			if err := l.save(); err != nil {
				return err
			}

			printSuccess("Removed %s", describeBox(b))
			l.warnDropped()
			printStats(l.sess.Len(), l.sess.Utilization(), 0)
			return nil
		},
	}
}

// resizeCommand changes a task's container.
func (c *CLI) resizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resize [task.json] [x,y,z]",
		Short: "Change the container size",
		Long: `Change the container size.

The resize is refused if any placed box would stick out of the new
container. Boxes are never moved; the offending boxes are listed instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := parseContainer(args[1])
			if err != nil {
				return err
			}
			l, err := c.openTask(args[0])
			if err != nil {
				return err
			}

			old := l.sess.Container()
			if err := l.sess.Resize(box); err != nil {
				if ids := errors.OffendingIDs(err); len(ids) > 0 {
					printError("Cannot resize to %s: %d box(es) would not fit", box, len(ids))
					for _, id := range ids {
						b, _ := l.sess.Box(id)
						printDetail("%s", describeBox(b))
					}
				}
				return err
			}
			if err := l.save(); err != nil {
				return err
			}

			printSuccess("Resized container %s %s %s", old, iconArrow, box)
			l.warnDropped()
			printStats(l.sess.Len(), l.sess.Utilization(), 0)
			return nil
		},
	}
}

// checkCommand re-validates every item of a task.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [task.json]",
		Short: "Validate every item of a task",
		Long: `Validate every item of a task.

Items are placed in order_id order exactly as the other commands do. Any
item that is out of bounds, overlaps an earlier item or has invalid
dimensions is reported, and the command fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(c.Logger)
			l, err := c.openTask(args[0])
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Checked %d items", len(l.task.Items)))

			if l.report.OK() {
				printSuccess("All %d items fit in %s", len(l.report.Placed), l.sess.Container())
			} else {
				for _, rej := range l.report.Rejected {
					printError("%s", rej)
				}
			}
			printStats(l.sess.Len(), l.sess.Utilization(), len(l.report.Rejected))
			return l.report.Err()
		},
	}
}

// lineupCommand rewrites item positions with the line-up arrangement.
func (c *CLI) lineupCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "lineup [task.json]",
		Short: "Arrange items in a row along the x axis",
		Long: `Arrange items in a row along the x axis.

Every item is moved to y = z = 0, flush against the previous one, in the
order they appear in the file. This is the starting arrangement of a new
task. Items that end up outside the container are reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := task.ImportJSON(args[0])
			if err != nil {
				return fmt.Errorf("load task %s: %w", args[0], err)
			}
			t.Items = task.LineUp(t.Items)

			path := output
			if path == "" {
				path = args[0]
			}
			if err := task.ExportJSON(t, path); err != nil {
				return fmt.Errorf("write task %s: %w", path, err)
			}
			printSuccess("Lined up %d items", len(t.Items))
			printFile(path)

			l, err := c.openTask(path)
			if err != nil {
				return err
			}
			if !l.report.OK() {
				printWarning("%d item(s) do not fit the container %s", len(l.report.Rejected), l.sess.Container())
				for _, rej := range l.report.Rejected {
					printDetail("%s", rej)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	return cmd
}
