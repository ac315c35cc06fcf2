package main

import (
	"fmt"
	"strings"

	"github.com/fenilsonani/carray/pkg/carray"
	"github.com/spf13/cobra"
)

func newDumpCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "dump <root>",
		Short: "Print every element, in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := carray.Open(args[0], carray.ModeRead)
			if err != nil {
				return fmt.Errorf("opening array: %w", err)
			}
			defer a.Close()

			n, err := a.Len()
			if err != nil {
				return err
			}
			it, err := a.Iter(0, n, 1, limit, 0)
			if err != nil {
				return fmt.Errorf("starting iteration: %w", err)
			}
			et := a.ElementType()
			var parts []string
			for {
				atom, ok, err := it.Next()
				if err != nil {
					return fmt.Errorf("iterating: %w", err)
				}
				if !ok {
					break
				}
				parts = append(parts, formatAtom(atom, et.Kind))
			}
			fmt.Println(strings.Join(parts, ", "))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", -1, "maximum elements to print (-1 = all)")
	return cmd
}
