package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pagevoice/pagevoice/pkg/config"
	"github.com/pagevoice/pagevoice/pkg/pipeline"
)

// newExtractCmd pulls raw text from one PDF page, for the manual
// cloning preparation path.
func newExtractCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "extract <pdf> <page-number>",
		Short: "Extract the raw text of a PDF page",
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

			text := pipeline.New(cfg).ExtractOnly(args[0], page)
			if text == "" {
				return fmt.Errorf("no text extracted from page %d of %s", page, args[0])
			}

			if outFile == "" {
				fmt.Println(text)
				return nil
			}
			if err := os.WriteFile(outFile, []byte(text), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outFile, err)
			}
			fmt.Printf("Text saved: %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write text to file instead of stdout")

	return cmd
}
