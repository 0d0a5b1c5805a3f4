package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/flickpanel/internal/config"
	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/ipc"
	"github.com/1broseidon/flickpanel/internal/tui"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "snap":
		os.Exit(runSnap(os.Args[2:]))
	case "hide":
		os.Exit(runHide(os.Args[2:]))
	case "restore":
		os.Exit(runRestore(os.Args[2:]))
	case "page":
		os.Exit(runPage(os.Args[2:]))
	case "regions":
		os.Exit(runRegions(os.Args[2:]))
	case "accent":
		os.Exit(runAccent(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: flickpanel <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the flickpanel daemon (foreground)")
	fmt.Fprintln(w, "  status              Show panel status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  snap                Spring the panel into its nearest corner")
	fmt.Fprintln(w, "  hide left|right     Park the panel against a screen edge")
	fmt.Fprintln(w, "  restore             Bring a parked panel back")
	fmt.Fprintln(w, "  page <name>         Report the page the panel is showing")
	fmt.Fprintln(w, "  regions             Set the panel's non-draggable regions")
	fmt.Fprintln(w, "  accent              Set the accent color or extract it from an image")
	fmt.Fprintln(w, "  reload              Ask the daemon to reload its configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Interactive console: live status, tuning, regions")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'flickpanel <command> --help' for command-specific options.")
}

func runTUI(args []string) int {
	fs := newFlagSet("tui", "flickpanel tui [--path PATH]",
		"Open the interactive console for a running daemon.")
	path := fs.String("path", "", "Config file the tuning and regions tabs save to")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if err := tui.Run(*path); err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		return 1
	}
	return 0
}

// newFlagSet builds a subcommand flag set whose usage prints synopsis and
// description followed by the flags.
func newFlagSet(name, synopsis, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+synopsis)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, description)
		hasFlags := false
		fs.VisitAll(func(*flag.Flag) { hasFlags = true })
		if hasFlags {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// parseFlags returns -1 when parsing succeeded, otherwise the exit code.
func parseFlags(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	return -1
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "flickpanel status [--json]", "Show panel status via IPC. Output is JSON when stdout is not a terminal.")
	jsonOut := fs.Bool("json", false, "Always output JSON")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return printStatus(os.Stdout, status, *jsonOut || !term.IsTerminal(int(os.Stdout.Fd())))
}

func printStatus(w io.Writer, status *ipc.StatusData, asJSON bool) int {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(w, "daemon_running: %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "window:         0x%x\n", status.Window)
	fmt.Fprintf(w, "phase:          %s\n", status.Phase)
	if status.Modality != "" {
		fmt.Fprintf(w, "modality:       %s\n", status.Modality)
	}
	if status.HaveFrame {
		f := status.Frame
		fmt.Fprintf(w, "frame:          %.0f,%.0f %.0fx%.0f\n", f.X, f.Y, f.Width, f.Height)
	} else {
		fmt.Fprintf(w, "frame:          unknown\n")
	}
	if status.Target != nil {
		fmt.Fprintf(w, "target:         %.0f,%.0f\n", status.Target.X, status.Target.Y)
	}
	fmt.Fprintf(w, "hidden:         %v\n", status.Hidden)
	fmt.Fprintf(w, "edge:           %s\n", status.Edge)
	fmt.Fprintf(w, "tiling_active:  %v\n", status.TilingActive)
	if status.Page != "" {
		fmt.Fprintf(w, "page:           %s\n", status.Page)
	}
	if status.Accent != "" {
		fmt.Fprintf(w, "accent:         %s\n", status.Accent)
	}
	fmt.Fprintf(w, "regions:        %d\n", len(status.Regions))
	fmt.Fprintf(w, "bottom_band:    %.0f\n", status.BottomBand)
	fmt.Fprintf(w, "uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runSnap(args []string) int {
	fs := newFlagSet("snap", "flickpanel snap", "Spring the panel into the nearest corner of its work area.")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "snap takes no arguments")
		fs.Usage()
		return 2
	}
	if _, err := ipc.NewClient().Snap(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runHide(args []string) int {
	fs := newFlagSet("hide", "flickpanel hide left|right", "Park the panel against a screen edge, leaving a sliver visible.")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 || (fs.Arg(0) != "left" && fs.Arg(0) != "right") {
		fmt.Fprintln(os.Stderr, "hide requires left or right")
		fs.Usage()
		return 2
	}
	status, err := ipc.NewClient().Hide(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !status.Hidden {
		fmt.Fprintln(os.Stderr, "panel was not hidden (dragging, no screen, or edge owned by a tiling layout)")
		return 1
	}
	return 0
}

func runRestore(args []string) int {
	fs := newFlagSet("restore", "flickpanel restore", "Bring a parked panel back on screen.")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "restore takes no arguments")
		fs.Usage()
		return 2
	}
	if _, err := ipc.NewClient().Restore(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPage(args []string) int {
	fs := newFlagSet("page", "flickpanel page <name>", "Report the page the panel is showing. Scroll dragging is limited to input.scroll_pages.")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "page requires <name>")
		fs.Usage()
		return 2
	}
	if err := ipc.NewClient().SetPage(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runRegions(args []string) int {
	fs := newFlagSet("regions", "flickpanel regions [--bottom-band N] [x,y,w,h ...]",
		"Replace the panel-local regions that never start a drag. No regions clears them.\n"+
			"Without --bottom-band the current band is kept. A config reload restores\n"+
			"input.non_drag_regions and input.bottom_band from the config file.")
	band := fs.Float64("bottom-band", -1, "Height of the reserved strip at the panel bottom (default: unchanged)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	regions, err := parseRegions(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	var bandPtr *float64
	if *band >= 0 {
		bandPtr = band
	}
	if err := ipc.NewClient().SetRegions(regions, bandPtr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// parseRegions parses "x,y,w,h" arguments.
func parseRegions(args []string) ([]geom.Rect, error) {
	regions := make([]geom.Rect, 0, len(args))
	for _, arg := range args {
		r, err := geom.ParseRect(arg)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, nil
}

func runAccent(args []string) int {
	fs := newFlagSet("accent", "flickpanel accent (--color #rrggbb | --image PATH)",
		"Set the panel accent color directly or from an image's dominant color.")
	color := fs.String("color", "", "Accent color as #rrggbb")
	image := fs.String("image", "", "Image to extract the dominant color from")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if (*color == "") == (*image == "") {
		fmt.Fprintln(os.Stderr, "accent requires exactly one of --color or --image")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient().SetAccent(ipc.SetAccentPayload{Color: *color, Image: *image})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if data.Color != "" {
		fmt.Println(data.Color)
	} else {
		fmt.Printf("extraction started (generation %d)\n", data.Generation)
	}
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "flickpanel reload", "Ask the running daemon to re-read its configuration file.")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  flickpanel config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  flickpanel config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  flickpanel config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/flickpanel/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/flickpanel/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			_ = printEffective // default
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			if res.File != "" {
				fmt.Printf("# file: %s\n", res.File)
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/flickpanel/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
