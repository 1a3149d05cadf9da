/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/lumina/engine"
	"github.com/spaghettifunk/lumina/testbed"
)

func main() {
	configPath := "lumina.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	tb, err := testbed.NewTestGame(configPath)
	if err != nil {
		panic(err)
	}

	app, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := app.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// end the frame loop on sigterm and other system calls; teardown
	// happens on this goroutine once Run returns
	go func() {
		<-sigCh
		app.Stop()
	}()

	if err := app.Run(); err != nil {
		panic(err)
	}

	if err := app.Shutdown(); err != nil {
		panic(err)
	}
}
