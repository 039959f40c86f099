package main

import (
	"os"

	"dispatchsim/cmd/dispatchsim/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
