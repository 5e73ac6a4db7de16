package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"groscore/internal/domain"
)

func protectCmd() *cobra.Command {
	var group, code, token, payload, target string
	var payloadHex bool
	cmd := &cobra.Command{
		Use:   "protect",
		Short: "Protect a request for a configured group",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			c, err := parseCode(code)
			if err != nil {
				return err
			}
			if !c.IsRequest() {
				return errors.New("--code must be a request method")
			}
			msg := &domain.Message{Code: c, Payload: []byte(payload)}
			if payloadHex {
				if msg.Payload, err = decodeFlag("payload", payload); err != nil {
					return err
				}
			}
			if msg.Token, err = decodeFlag("token", token); err != nil {
				return err
			}
			if target != "" {
				if msg.Target, err = decodeFlag("target", target); err != nil {
					return err
				}
			}

			w, err := openWire()
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, w.Close()) }()

			out, err := w.Sessions.Protect(msg, domain.CorrelationKey(group))
			if err != nil {
				return err
			}
			printMessage("request", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "group Key from the configuration")
	cmd.Flags().StringVar(&code, "code", "GET", "inner request method")
	cmd.Flags().StringVar(&token, "token", "", "token (hex)")
	cmd.Flags().StringVar(&payload, "payload", "", "plaintext payload")
	cmd.Flags().BoolVar(&payloadHex, "hex", false, "payload is hex")
	cmd.Flags().StringVar(&target, "target", "", "recipient id for a pairwise request (hex)")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}
