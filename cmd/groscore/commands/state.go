package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"groscore/internal/app"
	"groscore/internal/store"
)

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "List persisted sequence numbers and replay windows",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := app.OpenState(cfg.State)
			if err != nil {
				return err
			}
			if st == nil {
				return errors.New("state persistence is disabled (Backend = \"none\")")
			}
			defer func() { err = errors.Join(err, st.Close()) }()

			d, ok := st.(store.Dumper)
			if !ok {
				return fmt.Errorf("backend %q cannot list its contents", cfg.State.Backend)
			}
			snap, err := d.Dump()
			if err != nil {
				return err
			}
			fmt.Printf("%-16s %-16s %s\n", "GROUP", "SENDER", "SEQ")
			for _, e := range snap.Senders {
				fmt.Printf("%-16s %-16s %d\n", e.Group, e.Sender, e.State.Sequence)
			}
			fmt.Printf("\n%-16s %-16s %-8s %s\n", "GROUP", "RECIPIENT", "SIZE", "HIGH")
			for _, e := range snap.Windows {
				high := "-"
				if e.State.Seen {
					high = fmt.Sprint(e.State.High)
				}
				fmt.Printf("%-16s %-16s %-8d %s\n", e.Group, e.Recipient, e.State.Size, high)
			}
			return nil
		},
	}
}
