package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"boxoffice/internal/layout"
	"boxoffice/internal/models"
)

var (
	name   = pflag.StringP("layout", "l", layout.DefaultName, "built-in layout name")
	file   = pflag.StringP("file", "f", "", "layout file (yaml, json or toml); overrides --layout")
	seats  = pflag.Bool("seats", false, "print every generated seat as JSON")
	list   = pflag.Bool("list", false, "list built-in layouts and exit")
	asJSON = pflag.Bool("json", false, "print the summary as JSON")
)

func main() {
	pflag.Parse()

	if err := run(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "layout:", err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	if *list {
		for _, n := range layout.Names() {
			cfg, _ := layout.Lookup(n)
			fmt.Fprintf(out, "%-14s %d seats\n", n, layout.Capacity(cfg))
		}
		return nil
	}

	cfg, err := layout.Resolve(*name, *file)
	if err != nil {
		return err
	}

	if *seats {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(layout.Generate(cfg))
	}

	if *asJSON {
		return json.NewEncoder(out).Encode(map[string]any{
			"name":     cfg.Name,
			"capacity": layout.Capacity(cfg),
			"rows":     layout.Summary(cfg),
		})
	}

	return printSummary(out, cfg)
}

func printSummary(out io.Writer, cfg layout.Config) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "ROW\t%s\t%s\t%s\tTOTAL\t\n",
		models.SectorLeft.Label(), models.SectorCenter.Label(), models.SectorRight.Label())

	var left, center, right int
	for _, rc := range layout.Summary(cfg) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n", rc.Row, rc.Left, rc.Center, rc.Right, rc.Left+rc.Center+rc.Right)
		left += rc.Left
		center += rc.Center
		right += rc.Right
	}
	fmt.Fprintf(tw, "\t%d\t%d\t%d\t%d\t\n", left, center, right, left+center+right)

	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "layout %q is valid: %d seats\n", cfg.Name, layout.Capacity(cfg))
	return err
}
