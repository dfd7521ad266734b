// tourtool is a CLI utility for checking panorama tour files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/Faultbox/panorama/internal/assets"
	"github.com/Faultbox/panorama/internal/tour"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "links", "ls":
		cmdLinks(args)
	case "check":
		cmdCheck(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tourtool - panorama tour utility

Usage:
  tourtool <command> [options]

Commands:
  info <tour.yaml>                     Show tour summary
  links <tour.yaml> [node]             List hotspots (optionally of one node)
  check [-assets dir]... <tour.yaml>   Validate the tour and decode its assets

Examples:
  tourtool info tours/example.yaml
  tourtool links tours/example.yaml outside
  tourtool check -assets ./media -max 4096 tours/example.yaml`)
}

func loadTour(path string) *tour.File {
	f, err := tour.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return f
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tourtool info <tour.yaml>")
		os.Exit(1)
	}

	f := loadTour(args[0])

	hotspots, ambient := 0, 0
	for _, n := range f.Nodes {
		hotspots += len(n.Hotspots)
		if n.Ambient != "" {
			ambient++
		}
	}

	fmt.Printf("Tour:     %s\n", args[0])
	if f.Title != "" {
		fmt.Printf("Title:    %s\n", f.Title)
	}
	fmt.Printf("Start:    %s\n", f.StartNode())
	fmt.Printf("Nodes:    %d\n", len(f.Nodes))
	fmt.Printf("Hotspots: %d\n", hotspots)
	fmt.Printf("Ambient:  %d nodes\n", ambient)

	if lost := f.Unreachable(); len(lost) > 0 {
		fmt.Printf("\nUnreachable from %s: %s\n", f.StartNode(), strings.Join(lost, ", "))
	}
}

func cmdLinks(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tourtool links <tour.yaml> [node]")
		os.Exit(1)
	}

	f := loadTour(args[0])
	only := ""
	if len(args) > 1 {
		only = args[1]
	}

	count := 0
	for _, n := range f.Nodes {
		if only != "" && n.Name != only {
			continue
		}
		for _, h := range n.Hotspots {
			d := h.Direction
			fmt.Printf("%-16s %-16s -> %-16s [%.2f %.2f %.2f]\n", n.Name, h.Name, h.Target, d[0], d[1], d[2])
			count++
		}
	}

	if count == 0 {
		fmt.Fprintln(os.Stderr, "No hotspots found")
	}
}

type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var roots multiFlag
	fs.Var(&roots, "assets", "Asset root directory (repeatable, later roots win)")
	maxSize := fs.Int("max", 8192, "Largest texture side before scaling (0 = no limit)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tourtool check [-assets dir]... <tour.yaml>")
		os.Exit(1)
	}

	f := loadTour(fs.Arg(0))
	if len(roots) == 0 {
		roots = multiFlag{"."}
	}

	m := assets.NewManager(*maxSize, nil)
	defer m.Close()
	for _, root := range roots {
		if err := m.AddDir(root); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	problems := 0
	failed := m.Preload(context.Background(), f.Images(), runtime.NumCPU())
	for _, n := range f.Nodes {
		tex, err := m.LoadTexture(n.Image)
		if err != nil {
			fmt.Printf("FAIL %-16s image %s: %v\n", n.Name, n.Image, err)
			continue
		}
		w, h := tex.Size()
		note := ""
		if w != 2*h {
			note = " (not 2:1 equirectangular)"
		}
		fmt.Printf("ok   %-16s image %s %dx%d%s\n", n.Name, n.Image, w, h, note)

		if n.Ambient != "" {
			if _, err := m.Load(n.Ambient); err != nil {
				fmt.Printf("FAIL %-16s ambient %s: %v\n", n.Name, n.Ambient, err)
				problems++
			}
		}
	}
	problems += failed

	if f.Icon != "" {
		if _, err := m.LoadIcon(f.Icon); err != nil {
			fmt.Printf("FAIL icon %s: %v\n", f.Icon, err)
			problems++
		}
	}

	st := m.Stats()
	fmt.Printf("\n%d image(s) decoded, %d texture cache hit(s)\n", st.Textures, st.TextureHits)

	if lost := f.Unreachable(); len(lost) > 0 {
		fmt.Printf("warn unreachable from %s: %s\n", f.StartNode(), strings.Join(lost, ", "))
	}

	if problems > 0 {
		fmt.Fprintf(os.Stderr, "\n%d problem(s) found\n", problems)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "\nTour OK")
}
