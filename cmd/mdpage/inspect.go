package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/mdpage/internal/docinspect"
)

func (a *app) inspectCommand() *cobra.Command {
	var showText bool
	cmd := &cobra.Command{
		Use:   "inspect <file.pdf>...",
		Short: "Print the page count and text of PDF files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				report, err := docinspect.InspectFile(normalizePath(path))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%s: %d pages\n", path, report.Pages)
				if !showText {
					continue
				}
				for i, text := range report.Text {
					fmt.Fprintf(a.stdout, "--- page %d ---\n%s\n", i+1, text)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showText, "text", false, "print the extracted text of every page")
	return cmd
}
