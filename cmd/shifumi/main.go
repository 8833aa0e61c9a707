// Package main provides the CLI entrypoint for shifumi.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/shifumi/internal/config"
	"github.com/ayusman/shifumi/internal/gesture"
	"github.com/ayusman/shifumi/internal/store"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath  string
	serveAddr   string
	serveCamera int
	serveModel  string
	serveRounds int
	serveWebDir string
	serveTray   bool
	serveMock   bool
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shifumi",
		Short:         "Play rock paper scissors against the computer with your hand",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "path to config.toml")

	rootCmd.Flags().StringVar(&serveAddr, "addr", config.DefaultAddr, "HTTP listen address")
	rootCmd.Flags().IntVar(&serveCamera, "camera", 0, "camera device index")
	rootCmd.Flags().StringVar(&serveModel, "model", config.DefaultModelPath, "gesture classifier model file")
	rootCmd.Flags().IntVar(&serveRounds, "rounds", 3, "rounds in the first match")
	rootCmd.Flags().StringVar(&serveWebDir, "web-dir", "", "directory of the web UI (searched when empty)")
	rootCmd.Flags().BoolVar(&serveTray, "tray", false, "show a system tray menu")
	rootCmd.Flags().BoolVar(&serveMock, "mock", false, "use a synthetic camera, localizer and model")

	rootCmd.AddCommand(newCountsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadSettings reads the config file and overlays explicitly set flags.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	s, err := config.Load(configPath)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		s.Addr = serveAddr
	}
	if flags.Changed("camera") {
		s.CameraDevice = serveCamera
	}
	if flags.Changed("model") {
		s.ModelPath = serveModel
	}
	if flags.Changed("rounds") {
		s.Rounds = serveRounds
	}
	if flags.Changed("web-dir") {
		s.WebDir = serveWebDir
	}

	if err := s.Validate(); err != nil {
		return config.Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

func newCountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show how many training samples exist per gesture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			st, err := store.New(s.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open db: %w", err)
			}
			defer st.Close()

			counts, err := st.Samples().Counts()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			total := 0
			for _, m := range gesture.Moves {
				fmt.Fprintf(out, "%-9s %d\n", m, counts[m])
				total += counts[m]
			}
			fmt.Fprintf(out, "%-9s %d\n", "total", total)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shifumi %s\n", version)
		},
	}
}
