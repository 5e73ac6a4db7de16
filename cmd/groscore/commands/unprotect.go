package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"groscore/internal/crypto"
	"groscore/internal/domain"
)

func unprotectCmd() *cobra.Command {
	var peer, code, token, option, payload, reply string
	cmd := &cobra.Command{
		Use:   "unprotect",
		Short: "Unprotect a request and optionally answer it",
		Long: "Unprotect a request received from peer. With --reply the request is " +
			"served: the reply is protected and printed, and failures are printed " +
			"as the unprotected error response a server would send.",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			replySet := cmd.Flags().Changed("reply")
			c, err := parseCode(code)
			if err != nil {
				return err
			}
			msg := &domain.Message{Code: c, HasSecurity: true}
			if msg.Token, err = decodeFlag("token", token); err != nil {
				return err
			}
			if msg.Security, err = decodeFlag("oscore", option); err != nil {
				return err
			}
			if msg.Payload, err = decodeFlag("payload", payload); err != nil {
				return err
			}

			w, err := openWire()
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, w.Close()) }()

			key := domain.CorrelationKey(peer)
			if !replySet {
				in, err := w.Sessions.Unprotect(msg, key)
				if err != nil {
					return err
				}
				printInner(in)
				return nil
			}

			resp := w.Messages.Serve(key, msg, func(in *domain.Message) *domain.Message {
				printInner(in)
				return &domain.Message{Code: domain.CodeContent, Payload: []byte(reply)}
			})
			printMessage("response", resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&peer, "peer", "", "peer address or group Key the request came from")
	cmd.Flags().StringVar(&code, "code", "POST", "outer code")
	cmd.Flags().StringVar(&token, "token", "", "token (hex)")
	cmd.Flags().StringVar(&option, "oscore", "", "OSCORE option value (hex)")
	cmd.Flags().StringVar(&payload, "payload", "", "protected payload (hex)")
	cmd.Flags().StringVar(&reply, "reply", "", "answer the request with this payload")
	_ = cmd.MarkFlagRequired("oscore")
	return cmd
}

func printInner(m *domain.Message) {
	fmt.Printf("request:\n  code:    %s\n  payload: %q\n  hex:     %s\n", m.Code, m.Payload, crypto.Hex(m.Payload))
}
