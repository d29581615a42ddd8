package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/mdpage/console"
)

func (a *app) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(out)
			return err
		},
	}
}

func (a *app) themesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List terminal themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range console.AvailableThemes() {
				fmt.Fprintln(a.stdout, name)
			}
			return nil
		},
	}
}
