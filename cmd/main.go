package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/civitas-ai/civitas-ai/cmd/service"
)

func main() {
	root := &cobra.Command{
		Use:   "civitas",
		Short: "smart city data infrastructure",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("empty command")
		},
	}

	root.AddCommand(service.NewCommand(), service.NewSweepCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
