// Command mdpage streams research answers from an answer server, renders
// them in the terminal and exports them as paginated PDF documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pkt.systems/version"
)

func init() {
	version.SetDefaultModule("pkt.systems/mdpage")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		// a second interrupt kills the process
		stop()
	}()
	err := newApp(os.Stdin, os.Stdout, os.Stderr).command().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mdpage:", err)
		os.Exit(1)
	}
}
