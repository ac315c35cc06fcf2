package main

import (
	"fmt"
	"strconv"

	"github.com/fenilsonani/carray/pkg/carray"
	"github.com/spf13/cobra"
)

func newGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <root> <index>",
		Short: "Read one element by index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			a, err := carray.Open(root, carray.ModeRead)
			if err != nil {
				return fmt.Errorf("opening array: %w", err)
			}
			defer a.Close()

			et := a.ElementType()
			buf := make([]byte, et.AtomSize())
			if err := a.GetAt(idx, buf); err != nil {
				return fmt.Errorf("reading index %d: %w", idx, err)
			}
			fmt.Println(formatAtom(buf, et.Kind))
			return nil
		},
	}
	return cmd
}
