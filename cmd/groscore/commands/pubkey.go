package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"groscore/internal/crypto"
)

func pubkeyCmd() *cobra.Command {
	var b64 bool
	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "Print the public COSE_Key of the identity",
		Long: "Print the CBOR encoded public COSE_Key of the sealed identity, " +
			"suitable for a peer's Recipient.PublicKey or KnownKey.PublicKey entry.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := identityService()
			if err != nil {
				return err
			}
			priv, err := ids.PrivateKey(passphrase)
			if err != nil {
				return err
			}
			raw, err := priv.Public().COSE().MarshalBinary()
			if err != nil {
				return err
			}
			if b64 {
				fmt.Println(crypto.B64(raw))
			} else {
				fmt.Println(crypto.Hex(raw))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&b64, "base64", false, "print base64 instead of hex")
	return cmd
}
