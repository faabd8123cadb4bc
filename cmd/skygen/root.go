package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/skygen/common"
	"github.com/Carmen-Shannon/skygen/engine"
	"github.com/Carmen-Shannon/skygen/engine/config"
	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/Carmen-Shannon/skygen/engine/window"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	cubes      int
	watch      bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "skygen",
		Short:        "Draw a scene of colored cubes with WebGPU",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().IntVarP(&opts.cubes, "cubes", "n", 4, "number of cubes to spawn")
	cmd.Flags().BoolVar(&opts.watch, "watch", true, "reload the config file when it changes")
	return cmd
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(ctx context.Context, opts *options) error {
	if opts.cubes < 0 {
		return fmt.Errorf("cubes must not be negative, got %d", opts.cubes)
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := common.SetLogLevel(cfg.Log.Level); err != nil {
		return err
	}

	// GLFW and the surface must stay on the main thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithResizable(cfg.Window.Resizable),
	)
	if err != nil {
		return err
	}
	dev, err := device.NewWGPU(win.SurfaceDescriptor(), cfg.DeviceOptions()...)
	if err != nil {
		_ = win.Close()
		return err
	}

	eng, err := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithDevice(dev),
		engine.WithConfig(cfg),
	)
	if err != nil {
		dev.Release()
		_ = win.Close()
		return err
	}
	defer eng.Release()

	if err := setupScene(eng, opts.cubes); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		eng.Quit()
	}()
	if opts.watch && opts.configPath != "" {
		go func() {
			if err := config.Watch(ctx, opts.configPath, eng.QueueConfig); err != nil {
				common.Logger().Error("config watch stopped", "err", err)
			}
		}()
	}

	common.Logger().Info("starting", "cubes", opts.cubes, "present_mode", cfg.Renderer.PresentMode, "msaa", cfg.Renderer.MSAA)
	return eng.Run()
}
