package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pagevoice/pagevoice/pkg/config"
	"github.com/pagevoice/pagevoice/pkg/pipeline"
)

// newPageCmd narrates one PDF page with the hosted backend.
func newPageCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	var voiceID string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "page <pdf> <page-number>",
		Short: "Extract a PDF page and narrate it with the hosted voice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := strconv.Atoi(args[1])
			if err != nil || page < 1 {
				return fmt.Errorf("page number must be a positive integer, got %q", args[1])
			}

			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}
			if err := cfg.RequireHostedKey(); err != nil {
				return err
			}

			pipe := pipeline.New(cfg)
			audio := pipe.PageToHostedSpeech(cmd.Context(), args[0], page, voiceID)
			if audio == "" {
				return fmt.Errorf("narration failed for page %d of %s", page, args[0])
			}

			fmt.Printf("Audio saved: %s\n", audio)
			fmt.Printf("Text saved: %s\n", pipe.SidecarPath(page))
			return nil
		},
	}

	cmd.Flags().StringVar(&voiceID, "voice", "", "hosted voice ID (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for audio and text artifacts")

	return cmd
}
