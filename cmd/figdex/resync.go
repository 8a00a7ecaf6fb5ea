package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newResyncCmd(flags *globalFlags) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Rebuild every search document of one owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			client, err := buildApp(ctx, &cfg, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Resync(ctx, owner)
			if err != nil {
				return err
			}
			logger.Info("Resync finished",
				zap.String("owner_id", owner),
				zap.Int("figures", res.Figures),
				zap.Int("indexed", res.Indexed),
				zap.Int("failed", res.Failed),
			)
			cmd.Printf("resynced %d figures (%d indexed, %d failed)\n", res.Figures, res.Indexed, res.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner id to resync (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
