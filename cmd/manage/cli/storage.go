package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/config"
)

func NewStorageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Object storage utilities",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "policy",
		Short: "Allow public reads on the media bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())
			store, err := config.NewS3Config(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := store.SetupBucketPolicy(cmd.Context()); err != nil {
				return fmt.Errorf("set bucket policy on %s: %w", store.BucketName, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "public read policy applied to %s\n", store.BucketName)
			return nil
		},
	})

	return cmd
}
