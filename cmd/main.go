package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/squashtools/mkimage/image"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "mkimage [output-path]",
		Short: "Generate a minimal multi-layer test Docker image archive",
		Long: `mkimage synthesizes a self-consistent Docker image tar with a
manifest.json/config.json pair and three synthetic layers, for use as a
deterministic fixture by downstream image-processing tools such as layer
squashers. The archive structure is fixed; only the output path varies.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}

			outputPath := image.DefaultOutputName
			if len(args) > 0 {
				outputPath = args[0]
			}

			if err := image.Generate(outputPath); err != nil {
				return fmt.Errorf("failed to generate test image: %v", err)
			}

			fmt.Printf("Created test Docker image: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	return cmd
}
