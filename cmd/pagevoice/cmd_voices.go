package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagevoice/pagevoice/pkg/config"
	"github.com/pagevoice/pagevoice/pkg/voice"
)

// newVoicesCmd manages the hosted account's voice library.
func newVoicesCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	var registry *voice.Registry

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "Manage hosted voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			if err := cfg.RequireHostedKey(); err != nil {
				return err
			}
			registry = voice.NewRegistry(cfg.Hosted.APIKey, cfg.Hosted.BaseURL)
			return nil
		},
	}

	cmd.AddCommand(
		newVoicesListCmd(func() *voice.Registry { return registry }),
		newVoicesAddCmd(func() *voice.Registry { return registry }),
		newVoicesRemoveCmd(func() *voice.Registry { return registry }),
	)

	return cmd
}

func newVoicesListCmd(registry func() *voice.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List voices available to the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			voices, err := registry().ListVoices(cmd.Context())
			if err != nil {
				return err
			}
			if len(voices) == 0 {
				fmt.Println("No voices found")
				return nil
			}
			for _, v := range voices {
				fmt.Printf("%-24s %-12s %s\n", v.VoiceID, v.Category, v.Name)
			}
			return nil
		},
	}
}

func newVoicesAddCmd(registry func() *voice.Registry) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name> <sample-audio>",
		Short: "Create a hosted voice from a recorded sample",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			voiceID, err := registry().AddVoice(cmd.Context(), args[0], description, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Voice created: %s\n", voiceID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "voice description")

	return cmd
}

func newVoicesRemoveCmd(registry func() *voice.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <voice-id>",
		Short: "Delete a hosted voice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := registry().DeleteVoice(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Voice deleted: %s\n", args[0])
			return nil
		},
	}
}
