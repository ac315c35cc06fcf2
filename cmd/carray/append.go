package main

import (
	"fmt"

	"github.com/fenilsonani/carray/internal/chunk"
	"github.com/fenilsonani/carray/pkg/carray"
	"github.com/spf13/cobra"
)

func newAppendCommand() *cobra.Command {
	var (
		dtype  string
		values string
	)

	cmd := &cobra.Command{
		Use:   "append <root>",
		Short: "Append rows to a persistent array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			a, err := carray.Open(root, carray.ModeAppend)
			if err != nil {
				return fmt.Errorf("opening array: %w", err)
			}
			defer a.Close()

			dt := dtype
			if dt == "" {
				dt = a.ElementType().String()
			}
			data, et, err := parseValues(dt, values)
			if err != nil {
				return err
			}
			if et.Kind != chunk.KindObject && et.String() != a.ElementType().String() {
				return fmt.Errorf("dtype mismatch: array is %s, got %s", a.ElementType().String(), et.String())
			}
			if err := a.Append(data); err != nil {
				return fmt.Errorf("appending: %w", err)
			}
			n, err := a.Len()
			if err != nil {
				return err
			}
			fmt.Printf("Appended; len now %d\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&dtype, "dtype", "", "element type descriptor (defaults to the array's own)")
	cmd.Flags().StringVar(&values, "values", "", "comma-separated values to append")

	return cmd
}
