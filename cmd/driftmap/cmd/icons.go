package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/go-drift/driftmap/cmd/driftmap/internal/config"
	"github.com/go-drift/driftmap/pkg/raster"
)

func init() {
	RegisterCommand(&Command{
		Name:  "icons",
		Short: "Render pin icons to PNG files",
		Long: `Render the pin icon of each label to <output>/<image id>.png.

The pin style, image id prefix and output directory come from driftmap.yaml
in the project root when present. Each written file is printed as
"<image id> <path>".

Flags:
  --out DIR   Override the output directory`,
		Usage: "driftmap icons [--out DIR] <label>...",
		Run:   runIcons,
	})

	RegisterCommand(&Command{
		Name:  "id",
		Short: "Print the style image id of labels",
		Long: `Print the style image id a Drift map registers for each label's pin,
one per line, without rendering anything.`,
		Usage: "driftmap id <label>...",
		Run:   runID,
	})
}

// icon is one label resolved against the project style.
type icon struct {
	label   string
	id      string
	painter raster.PinPainter
}

func resolveIcons(cfg *config.Resolved, labels []string) []icon {
	size := cfg.Style.IconSize()
	icons := make([]icon, len(labels))
	for i, label := range labels {
		p := raster.PinPainter{Label: label, Style: &cfg.Style}
		icons[i] = icon{
			label:   label,
			id:      raster.ImageID(cfg.Prefix, p.Key(), size),
			painter: p,
		}
	}
	return icons
}

func loadConfig() (*config.Resolved, error) {
	root, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("root", cfg.Root).Str("prefix", cfg.Prefix).Msg("configuration resolved")
	return cfg, nil
}

func runIcons(args []string) error {
	var out string
	var labels []string
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--out":
			if i+1 >= len(args) {
				return fmt.Errorf("--out requires a directory")
			}
			out = args[i+1]
			i++
		case strings.HasPrefix(arg, "--out="):
			out = strings.TrimPrefix(arg, "--out=")
		default:
			labels = append(labels, arg)
		}
	}
	if len(labels) == 0 {
		return fmt.Errorf("at least one label is required\n\nUsage: driftmap icons [--out DIR] <label>...")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if out != "" {
		cfg.OutputDir = out
	}
	return writeIcons(cfg, labels)
}

func writeIcons(cfg *config.Resolved, labels []string) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	size := cfg.Style.IconSize()
	for _, ic := range resolveIcons(cfg, labels) {
		img, err := raster.Rasterize(ic.painter, size)
		if err != nil {
			return fmt.Errorf("label %q: %w", ic.label, err)
		}
		path := filepath.Join(cfg.OutputDir, ic.id+".png")
		if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
			return fmt.Errorf("label %q: %w", ic.label, err)
		}
		logger.Debug().Str("label", ic.label).Str("image", ic.id).Str("path", path).Msg("icon written")
		fmt.Fprintf(stdout, "%s %s\n", ic.id, path)
	}
	return nil
}

func runID(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one label is required\n\nUsage: driftmap id <label>...")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	for _, ic := range resolveIcons(cfg, args) {
		fmt.Fprintln(stdout, ic.id)
	}
	return nil
}
