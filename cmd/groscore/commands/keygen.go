package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"groscore/internal/cose"
)

func keygenCmd() *cobra.Command {
	var alg string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a countersignature key and store it sealed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			a, err := cose.ParseAlgorithm(alg)
			if err != nil {
				return err
			}
			ids, err := identityService()
			if err != nil {
				return err
			}
			_, fp, err := ids.GenerateIdentity(passphrase, int(a))
			if err != nil {
				return err
			}
			fmt.Printf("Identity created.\nFingerprint: %s\n", fp)
			return nil
		},
	}
	cmd.Flags().StringVar(&alg, "alg", cose.AlgEdDSA.String(), "countersignature algorithm (EdDSA or ES256)")
	return cmd
}
