package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/delaneyj/fiberparty/config"
	"github.com/delaneyj/fiberparty/describe"
	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/hosttree"
	"github.com/delaneyj/fiberparty/scheduler"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	configKey     = "config"
	concurrentKey = "concurrent"
	sliceKey      = "slice"
	maxYieldKey   = "max-yield"
	traceKey      = "trace"
	htmlKey       = "html"
	verboseKey    = "verbose"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "fiber",
		Usage: "Reconcile description trees and show what each commit does",
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "Render every YAML document of the given files in order",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  configKey,
						Usage: "Path to a YAML config file",
					},
					&cli.BoolFlag{
						Name:  concurrentKey,
						Usage: "Render in interruptible time slices",
					},
					&cli.DurationFlag{
						Name:  sliceKey,
						Usage: "Time slice budget for interruptible rendering",
						Value: scheduler.DefaultSlice,
					},
					&cli.DurationFlag{
						Name:  maxYieldKey,
						Usage: "Longest a slice may run when no event is pending",
						Value: scheduler.DefaultMaxYieldInterval,
					},
					&cli.BoolFlag{
						Name:  traceKey,
						Usage: "Print every capture and completion step",
					},
					&cli.BoolFlag{
						Name:  htmlKey,
						Usage: "Print the mounted tree as HTML after each commit",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  verboseKey,
						Usage: "Debug logging",
					},
				},
				Action: render,
			},
		},
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String(configKey))
	if err != nil {
		return nil, err
	}
	if cmd.IsSet(concurrentKey) {
		cfg.Mode = config.ModeSync
		if cmd.Bool(concurrentKey) {
			cfg.Mode = config.ModeConcurrent
		}
	}
	if cmd.IsSet(sliceKey) {
		cfg.Slice = cmd.Duration(sliceKey)
	}
	if cmd.IsSet(maxYieldKey) {
		cfg.MaxYieldInterval = cmd.Duration(maxYieldKey)
	}
	if cmd.IsSet(traceKey) {
		cfg.Trace = cmd.Bool(traceKey)
	}
	if cmd.Bool(verboseKey) {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

func render(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return fmt.Errorf("no description files given")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var steps []fiber.Step
	opts := []fiber.Option{fiber.WithLogger(logger)}
	if cfg.Trace {
		opts = append(opts, fiber.WithTrace(func(s fiber.Step) {
			steps = append(steps, s)
		}))
	}

	tree := hosttree.New()
	root, err := fiber.NewRoot(tree, opts...)
	if err != nil {
		return err
	}
	reg := describe.DefaultRegistry()
	reg["Counter"] = counter

	host := &scheduler.SystemHost{}
	pass := 0
	for _, path := range cmd.Args().Slice() {
		elements, err := decodeFile(path, reg)
		if err != nil {
			return err
		}
		for _, el := range elements {
			pass++
			steps = steps[:0]
			slices := 1
			if cfg.Mode == config.ModeConcurrent {
				root.Schedule(el, fiber.PriorityNormal)
				slices, err = scheduler.Run(ctx, host, cfg.Budget(), cfg.Tick, func(y *scheduler.Yielder) (bool, error) {
					return root.Work(y)
				})
			} else {
				err = root.Render(el)
			}
			if err != nil {
				return fmt.Errorf("%s pass %d: %w", path, pass, err)
			}

			fmt.Printf("== pass %d (%s, %s slices)\n", pass, path, humanize.Comma(int64(slices)))
			if cfg.Trace {
				printSteps(os.Stdout, steps)
			}
			printCommit(os.Stdout, root.LastCommit())
			if cmd.Bool(htmlKey) {
				fmt.Println(tree.HTML())
			}
		}
	}

	stats := root.Stats()
	log.Printf("%s renders, %s commits, %s units of work, %s live nodes",
		humanize.Comma(int64(stats.Renders)),
		humanize.Comma(int64(stats.Commits)),
		humanize.Comma(int64(stats.Units)),
		humanize.Comma(int64(stats.LiveNodes)),
	)
	return nil
}

func decodeFile(path string, reg describe.Registry) ([]*fiber.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return describe.Decode(f, reg)
}

func printSteps(w io.Writer, steps []fiber.Step) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"step", "phase", "id", "kind", "type"})
	for i, s := range steps {
		table.Append([]string{
			strconv.Itoa(i + 1),
			string(s.Phase),
			fmt.Sprint(s.ID),
			s.Kind.String(),
			s.Type,
		})
	}
	table.Render()
}

func printCommit(w io.Writer, info fiber.CommitInfo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "id", "kind", "type", "key", "flags", "payload"})
	for i, e := range info.Effects {
		table.Append([]string{
			strconv.Itoa(i + 1),
			fmt.Sprint(e.ID),
			e.Kind.String(),
			e.Type,
			e.Key,
			e.Flags.String(),
			formatPayload(e.Payload),
		})
	}
	for _, d := range info.Deletions {
		table.Append([]string{"-", fmt.Sprint(d.ID), "", d.Type, "", "removed", fmt.Sprintf("from %d", d.Parent)})
	}
	table.SetFooter([]string{"", "", "", "", "", humanize.Comma(int64(info.Units)) + " units", info.RenderTime.String() + " + " + info.CommitTime.String()})
	table.Render()
}

func formatPayload(p fiber.Props) string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, p[k]))
	}
	return strings.Join(parts, " ")
}

// counter is the component from the render walkthrough: the count it is
// given and a button. Successive documents move the count.
func counter(_ *fiber.ComponentContext, props fiber.Props) ([]*fiber.Element, error) {
	count, _ := props["count"].(int)
	return []*fiber.Element{
		fiber.H("div", nil,
			fiber.H("p", nil, fiber.T(strconv.Itoa(count))),
			fiber.H("button", fiber.Props{"onClick": "increment"}, fiber.T("click me")),
		),
	}, nil
}
