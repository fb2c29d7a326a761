package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/container/builder"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	blue  = color.New(color.FgBlue, color.Bold).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

var fileFlag = &cli.StringFlag{
	Name:     "file",
	Aliases:  []string{"f"},
	Usage:    "container definition (YAML or JSON)",
	Required: true,
}

func newApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "ioc",
		Usage:     "inspect container definition files",
		Writer:    out,
		ErrWriter: errOut,
		Commands: []*cli.Command{
			{
				Name:   "tree",
				Usage:  "print the container tree described by a definition",
				Flags:  []cli.Flag{fileFlag},
				Action: treeAction,
			},
			{
				Name:      "resolve",
				Usage:     "follow the alias chain of a name",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					fileFlag,
					&cli.StringFlag{Name: "namespace", Aliases: []string{"n"}, Usage: "container path to resolve in"},
				},
				Action: resolveAction,
			},
			{
				Name:   "validate",
				Usage:  "check a definition without building it",
				Flags:  []cli.Flag{fileFlag},
				Action: validateAction,
			},
		},
	}
}

func treeAction(ctx *cli.Context) error {
	c, err := sketch(ctx.String("file"))
	if err != nil {
		return err
	}
	printTree(ctx.App.Writer, c.Describe(), 0)
	return nil
}

func resolveAction(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" {
		return cli.Exit("resolve: missing <name>", 2)
	}
	root, err := sketch(ctx.String("file"))
	if err != nil {
		return err
	}
	c, err := root.From("/" + ctx.String("namespace"))
	if err != nil {
		return err
	}

	resolved, err := c.Extended(name)
	if err != nil {
		return err
	}
	status := green("registered")
	if !c.Has(name) {
		status = red("missing")
	}
	fmt.Fprintf(ctx.App.Writer, "%s %s %s %s\n", bold(name), gray("->"), resolved, gray("("+status+")"))
	return nil
}

func validateAction(ctx *cli.Context) error {
	def, err := builder.LoadFile(ctx.String("file"))
	if err != nil {
		return err
	}
	var invalid *builder.ValidationError
	if errors.As(builder.Validate(def), &invalid) {
		for _, p := range invalid.Problems {
			fmt.Fprintln(ctx.App.ErrWriter, red("✗ ")+p)
		}
		return cli.Exit("definition is invalid", 1)
	}
	fmt.Fprintln(ctx.App.Writer, green("✓ ")+"definition is valid")
	return nil
}

// sketch loads the definition at path and builds it with stand-in entries.
func sketch(path string) (*container.Container, error) {
	def, err := builder.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return builder.Sketch(def)
}

func printTree(w io.Writer, d container.Description, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintln(w, indent+blue(d.Path))

	row := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "%s  %s %s\n", indent, gray(fmt.Sprintf("%-9s", label)), strings.Join(items, ", "))
	}
	row("services", d.Services)
	row("aliases", pairs(d.Aliases))
	row("plugins", d.Aggregates)

	for _, child := range d.Nested {
		printTree(w, child, depth+1)
	}
}

func pairs(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+" -> "+v)
	}
	sort.Strings(out)
	return out
}
