package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"

	apppkg "github.com/kk-code-lab/rpanes/internal/app"
	"github.com/kk-code-lab/rpanes/internal/config"
)

func printHelp() {
	fmt.Print(`rpanes - Multi-panel terminal directory browser

USAGE:
    rpanes [OPTIONS] [DIR...]

OPTIONS:
    -h, --help            Show this help message and exit

Each DIR opens in its own panel (up to 9). Without arguments the last
session is restored. Settings are read from config.toml in the rpanes
config directory, or from the file named by RPANES_CONFIG.
`)
}

func main() {
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	var dirs []string
	for _, arg := range os.Args[1:] {
		switch {
		case arg == "-h" || arg == "--help":
			printHelp()
			os.Exit(0)
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "unknown option %q\n", arg)
			printHelp()
			os.Exit(2)
		default:
			dirs = append(dirs, arg)
		}
	}
	if len(dirs) > config.MaxPanels {
		fmt.Fprintf(os.Stderr, "at most %d directories, got %d\n", config.MaxPanels, len(dirs))
		os.Exit(2)
	}

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	app, err := apppkg.NewApplication(settings, dirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing application: %v\n", err)
		os.Exit(1)
	}
	app.Run()
	if err := app.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}
