package main

import (
	"fmt"

	"github.com/fenilsonani/carray/pkg/carray"
	"github.com/spf13/cobra"
)

func newSumCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sum <root>",
		Short: "Reduce an array with dtype-promoted sum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := carray.Open(args[0], carray.ModeRead)
			if err != nil {
				return fmt.Errorf("opening array: %w", err)
			}
			defer a.Close()

			res, err := a.Sum()
			if err != nil {
				return fmt.Errorf("summing: %w", err)
			}
			if res.IsFloat {
				fmt.Println(res.Float64)
			} else {
				fmt.Println(res.Int64)
			}
			return nil
		},
	}
	return cmd
}
