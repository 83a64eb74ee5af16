package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/b1naryth1ef/topshade"
	"github.com/b1naryth1ef/topshade/anvil"
	"github.com/b1naryth1ef/topshade/build"
	"github.com/b1naryth1ef/topshade/logger"
)

func main() {
	app := &cli.App{
		Name:        "topshade",
		Description: "top-down minecraft map renderer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.PathFlag{
				Name:  "log-file",
				Usage: "also write JSON logs to this file, rotated",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "render every map of a configuration file",
				Action: commandBuild,
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  "config",
						Usage: "path to the configuration file",
						Value: "config.hcl",
					},
					&cli.BoolFlag{
						Name:  "clean",
						Usage: "force a clean build ignoring chunk modification time data",
						Value: false,
					},
				},
			},
			{
				Name:   "render",
				Usage:  "render a single region to a PNG",
				Action: commandRender,
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     "world",
						Usage:    "directory holding the r.X.Z.mca region files",
						Required: true,
					},
					&cli.IntFlag{Name: "x", Usage: "region x"},
					&cli.IntFlag{Name: "z", Usage: "region z"},
					&cli.PathFlag{
						Name:  "out",
						Usage: "output PNG",
						Value: "region.png",
					},
					&cli.StringFlag{
						Name:  "palette",
						Usage: "static, biome or texture",
						Value: "static",
					},
					&cli.PathFlag{
						Name:  "jar",
						Usage: "client JAR, required by the biome and texture palettes",
					},
					&cli.StringFlag{
						Name:  "height-mode",
						Usage: "trust or calculate",
						Value: "trust",
					},
				},
			},
		},
		Before: func(ctx *cli.Context) error {
			logger.Init(ctx.String("log-level"), ctx.Path("log-file"))
			return nil
		},
		After: func(ctx *cli.Context) error {
			logger.Sync()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commandBuild(ctx *cli.Context) error {
	config, err := topshade.LoadConfig(ctx.Path("config"))
	if err != nil {
		return err
	}

	// flags win over the configuration file
	if !ctx.IsSet("log-level") && !ctx.IsSet("log-file") && (config.LogLevel != "" || config.LogFile != "") {
		logger.Init(config.LogLevel, config.LogFile)
	}

	return build.Build(config, build.Options{
		ForceClean: ctx.Bool("clean"),
	})
}

func commandRender(ctx *cli.Context) error {
	mode, err := topshade.ParseHeightMode(ctx.String("height-mode"))
	if err != nil {
		return err
	}

	var palette topshade.Palette
	switch ctx.String("palette") {
	case "static":
		palette = topshade.DefaultStaticPalette()
	case "biome", "texture":
		if !ctx.IsSet("jar") {
			return fmt.Errorf("the %s palette needs --jar", ctx.String("palette"))
		}
		assets, err := topshade.NewAssetLoaderFromClientJAR(ctx.Path("jar"))
		if err != nil {
			return err
		}
		defer assets.Close()

		if ctx.String("palette") == "biome" {
			palette, err = topshade.NewBiomePaletteFromAssets(assets)
		} else {
			palette, err = topshade.NewTexturePalette(assets)
		}
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown palette '%s'", ctx.String("palette"))
	}

	dim, err := anvil.Open(ctx.Path("world"))
	if err != nil {
		return err
	}

	x, z := topshade.RCoord(ctx.Int("x")), topshade.RCoord(ctx.Int("z"))
	m := topshade.RenderRegion(x, z, dim, topshade.NewTopShadeRenderer(palette, mode))

	out, err := os.Create(ctx.Path("out"))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := png.Encode(out, topshade.Image(m)); err != nil {
		return err
	}
	logger.Info("rendered region", zap.Int("x", int(x)), zap.Int("z", int(z)), zap.String("out", ctx.Path("out")))
	return nil
}
