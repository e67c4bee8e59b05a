// Command sonogrid renders audio spectrograms: offline image rendering,
// decode inspection, and the HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sonogrid/sonogrid/logging"
	"github.com/sonogrid/sonogrid/render"
	"github.com/sonogrid/sonogrid/server"
	"github.com/sonogrid/sonogrid/spectrogram"
	"github.com/sonogrid/sonogrid/spectrogram/config"
	"github.com/sonogrid/sonogrid/transcode"
)

var (
	flagVerbose bool
	flagQuiet   bool
)

func main() {
	root := &cobra.Command{
		Use:           "sonogrid",
		Short:         "Audio spectrogram renderer and service",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch {
			case flagQuiet:
				logging.SetLevel(logging.ErrorLevel)
			case flagVerbose:
				logging.SetLevel(logging.DebugLevel)
			default:
				logging.SetLevel(logging.InfoLevel)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "log errors only")

	root.AddCommand(renderCommand(), infoCommand(), serveCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func renderCommand() *cobra.Command {
	var (
		output   string
		colormap string
		scale    string
		fftSize  int
		mode     string
		width    int
		height   int
		playhead float64
		legend   bool
		term     bool
		mel      bool
	)

	cmd := &cobra.Command{
		Use:   "render <audio>",
		Short: "Render a spectrogram image from an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			palette, err := config.ParsePaletteType(colormap)
			if err != nil {
				return err
			}
			scaleType, err := config.ParseScaleType(scale)
			if err != nil {
				return err
			}
			modeType, err := config.ParseMode(mode)
			if err != nil {
				return err
			}

			data, err := transcode.DecodeFile(args[0])
			if err != nil {
				return err
			}

			buildCfg := config.DefaultBuildConfig()
			buildCfg.Analysis.FFTSize = fftSize
			buildCfg.Mode = modeType

			builder, err := spectrogram.NewBuilder(buildCfg)
			if err != nil {
				return err
			}

			var matrix *spectrogram.Matrix
			if mel {
				matrix, err = builder.BuildMel(data.PCM, data.SampleRate)
			} else {
				matrix, err = builder.Build(data.PCM, data.SampleRate)
			}
			if err != nil {
				return err
			}

			display := config.DefaultDisplayConfig()
			display.Width = width
			display.Height = height
			display.Scale = scaleType
			display.Palette = palette

			packer, err := spectrogram.NewPacker(display)
			if err != nil {
				return err
			}
			grid, err := packer.Pack(matrix)
			if err != nil {
				return err
			}

			if term {
				tr, err := render.NewTermRenderer(palette)
				if err != nil {
					return err
				}
				cols, rows := 80, 20
				fmt.Fprintln(cmd.OutOrStdout(), tr.Render(grid, cols, rows))
				fmt.Fprintln(cmd.OutOrStdout(), tr.Legend(cols))
				return nil
			}

			renderer, err := render.NewImageRenderer(palette)
			if err != nil {
				return err
			}
			opts := render.ImageOptions{Playhead: playhead, Legend: legend}
			if err := renderer.Save(output, grid, opts); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d, %d frames, %d bins)\n",
				output, grid.Width, grid.Height, matrix.FrameCount, matrix.BinCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "spectrogram.png", "output image path (.png or .jpg)")
	cmd.Flags().StringVar(&colormap, "colormap", string(config.PaletteInferno), "color palette")
	cmd.Flags().StringVar(&scale, "scale", string(config.ScaleLog), "frequency scale (linear, log, mel, bark)")
	cmd.Flags().IntVar(&fftSize, "fft-size", 2048, "FFT size (power of two)")
	cmd.Flags().StringVar(&mode, "mode", string(config.ModeClassic), "enhancement preset (classic, sharp, sharper)")
	cmd.Flags().IntVar(&width, "width", 1920, "image width")
	cmd.Flags().IntVar(&height, "height", 1080, "image height")
	cmd.Flags().Float64Var(&playhead, "playhead", -1, "draw a cursor at this position in [0,1]")
	cmd.Flags().BoolVar(&legend, "legend", false, "draw a palette legend strip")
	cmd.Flags().BoolVar(&term, "term", false, "preview in the terminal instead of writing a file")
	cmd.Flags().BoolVar(&mel, "mel", false, "build a mel-band matrix instead of raw bins")

	return cmd
}

func infoCommand() *cobra.Command {
	var fftSize int

	cmd := &cobra.Command{
		Use:   "info <audio>",
		Short: "Decode an audio file and print its analysis summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := transcode.DecodeFile(args[0])
			if err != nil {
				return err
			}

			buildCfg := config.DefaultBuildConfig()
			buildCfg.Analysis.FFTSize = fftSize
			builder, err := spectrogram.NewBuilder(buildCfg)
			if err != nil {
				return err
			}
			matrix, err := builder.Build(data.PCM, data.SampleRate)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "format:      %s\n", data.Format)
			fmt.Fprintf(out, "sample rate: %d Hz\n", data.SampleRate)
			fmt.Fprintf(out, "channels:    %d (mixed to mono)\n", data.Channels)
			fmt.Fprintf(out, "duration:    %s\n", data.Duration)
			fmt.Fprintf(out, "samples:     %d\n", len(data.PCM))
			fmt.Fprintf(out, "fft size:    %d\n", matrix.FFTSize)
			fmt.Fprintf(out, "hop size:    %d\n", matrix.HopSize)
			fmt.Fprintf(out, "frames:      %d\n", matrix.FrameCount)
			fmt.Fprintf(out, "bins:        %d\n", matrix.BinCount)
			fmt.Fprintf(out, "value range: [%d, %d]\n", matrix.Range.Min, matrix.Range.Max)
			return nil
		},
	}

	cmd.Flags().IntVar(&fftSize, "fft-size", 2048, "FFT size (power of two)")
	return cmd
}

func serveCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the spectrogram HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if !flagVerbose && !flagQuiet {
				logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config path")
	return cmd
}
