package main

import (
	"os"

	"github.com/corraldev/corral/internal/daemon"
)

func main() {
	if err := daemon.Cmd().Execute(); err != nil {
		os.Exit(1)
	}
}
