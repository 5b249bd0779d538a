package main

import "github.com/jandejongh/jsimulation/cmd/jsimulation/cmd"

func main() {
	cmd.Execute()
}
