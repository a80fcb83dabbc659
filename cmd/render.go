package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-principled-shading/pkg/integrator"
	"github.com/df07/go-principled-shading/pkg/log"
	"github.com/df07/go-principled-shading/pkg/renderer"
	"github.com/df07/go-principled-shading/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// RenderScene renders a built-in scene or a .pbrt file to PNG. An
// interrupt stops the render early; the partial image is still written.
func RenderScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene argument")
	}
	sceneName := ctx.Args().First()

	sc, err := scene.LoadScene(sceneName, libraryLogger(log.Warning))
	if err != nil {
		return err
	}
	logger.Infof("loaded scene %q with %d shapes and %d lights", sc.Name, len(sc.Shapes), len(sc.Lights))

	config := renderConfigFromFlags(ctx, renderer.DefaultRenderConfig().WithScene(sc.SamplingConfig))
	settings, err := integratorFromFlags(ctx, sc.Integrator)
	if err != nil {
		return err
	}
	integ, err := newIntegrator(settings, config)
	if err != nil {
		return err
	}

	r, err := renderer.NewRenderer(sc, integ, config, libraryLogger(log.Info))
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fb, stats, renderErr := r.Render(runCtx)
	if renderErr != nil && !errors.Is(renderErr, renderer.ErrCanceled) {
		return renderErr
	}

	out := ctx.String("out")
	if out == "" {
		out = defaultOutputPath(sceneName, time.Now())
	}
	if err := renderer.WritePNG(out, fb.ToRGBA(ctx.Float64("gamma"))); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", out)

	displayRenderStats(sc, config, stats)
	return renderErr
}

// renderConfigFromFlags applies the flags the user set on top of config
func renderConfigFromFlags(ctx *cli.Context, config renderer.RenderConfig) renderer.RenderConfig {
	if ctx.IsSet("width") {
		config.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		config.Height = ctx.Int("height")
	}
	if ctx.IsSet("spp") {
		config.SamplesPerPixel = ctx.Int("spp")
	}
	if ctx.IsSet("depth") {
		config.MaxDepth = ctx.Int("depth")
	}
	if ctx.IsSet("rr-bounces") {
		config.RussianRouletteMinBounces = ctx.Int("rr-bounces")
	}
	if ctx.IsSet("tile-size") {
		config.TileSize = ctx.Int("tile-size")
	}
	if ctx.IsSet("workers") {
		config.NumWorkers = ctx.Int("workers")
	}
	if ctx.IsSet("seed") {
		config.Seed = ctx.Int64("seed")
	}
	return config
}

// integratorFromFlags starts from the scene's integrator choice. Flags the
// user set override it, and flag defaults fill what the scene left empty.
func integratorFromFlags(ctx *cli.Context, settings scene.IntegratorSettings) (scene.IntegratorSettings, error) {
	if ctx.IsSet("integrator") || settings.Name == "" {
		settings.Name = ctx.String("integrator")
	}
	if ctx.IsSet("field") || settings.Field == "" {
		settings.Field = ctx.String("field")
	}
	if ctx.IsSet("undefined") {
		c, err := parseColor(ctx.String("undefined"))
		if err != nil {
			return settings, fmt.Errorf("undefined: %w", err)
		}
		settings.Undefined = c
	}
	return settings, nil
}

// newIntegrator creates the integrator settings name
func newIntegrator(settings scene.IntegratorSettings, config renderer.RenderConfig) (integrator.Integrator, error) {
	switch settings.Name {
	case "path", "":
		return integrator.NewPathTracingIntegrator(config.SamplingConfig()), nil
	case "field":
		return integrator.NewFieldIntegrator(settings.Field, settings.Undefined, libraryLogger(log.Warning)), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q (want path or field)", settings.Name)
	}
}

// defaultOutputPath returns output/<scene>/render_<timestamp>.png
func defaultOutputPath(sceneName string, now time.Time) string {
	base := filepath.Base(sceneName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "scene"
	}
	return filepath.Join("output", base, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

func displayRenderStats(sc *scene.Scene, config renderer.RenderConfig, stats renderer.RenderStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Resolution", "Primitives", "Tiles", "Samples/pixel", "Dropped", "Avg luminance"})
	table.Append([]string{
		sc.Name,
		fmt.Sprintf("%dx%d", config.Width, config.Height),
		fmt.Sprintf("%d", sc.GetPrimitiveCount()),
		fmt.Sprintf("%d/%d", stats.TilesRendered, stats.TilesTotal),
		fmt.Sprintf("%.1f", stats.AverageSamples),
		fmt.Sprintf("%d", stats.DroppedSamples),
		fmt.Sprintf("%.4f", stats.AverageLuminance),
	})
	table.SetFooter([]string{"", "", "", "", "", "TOTAL", stats.Duration.Round(time.Millisecond).String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
