package main

import (
	"fmt"

	"github.com/fenilsonani/carray/pkg/carray"
	"github.com/spf13/cobra"
)

func newInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <root>",
		Short: "Print a summary of an array's layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := carray.Open(args[0], carray.ModeRead)
			if err != nil {
				return fmt.Errorf("opening array: %w", err)
			}
			defer a.Close()

			d, err := a.Describe()
			if err != nil {
				return fmt.Errorf("describing array: %w", err)
			}
			fmt.Printf("root:        %s\n", d.Root)
			fmt.Printf("dtype:       %s\n", d.Dtype)
			fmt.Printf("len:         %d\n", d.Len)
			fmt.Printf("chunklen:    %d\n", d.ChunkLen)
			fmt.Printf("nchunks:     %d\n", d.NChunks)
			fmt.Printf("leftover:    %d\n", d.LeftoverLen)
			fmt.Printf("codec:       %s\n", d.CodecName)
			fmt.Printf("level:       %d\n", d.Level)
			return nil
		},
	}
	return cmd
}
