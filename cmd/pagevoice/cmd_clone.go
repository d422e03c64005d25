package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagevoice/pagevoice/pkg/config"
	"github.com/pagevoice/pagevoice/pkg/pipeline"
)

// newCloneCmd synthesizes a text file with a cloned voice through the
// local model server.
func newCloneCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	var language string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "clone <text-file> <reference-audio>",
		Short: "Narrate a text file in the voice of a reference sample",
		Long: `Narrate a text file in a cloned voice.

The reference audio is converted to mono 22050 Hz before synthesis.
Requires the local cloning server to be running (see clone.server_url).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}

			audio := pipeline.New(cfg).TextToClonedSpeech(cmd.Context(), args[0], args[1], language)
			if audio == "" {
				return fmt.Errorf("cloning failed for %s", args[0])
			}

			fmt.Printf("Audio saved: %s\n", audio)
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "synthesis language (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for audio artifacts")

	return cmd
}
