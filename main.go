// Package main is the entry point for the arenasim CLI: a deterministic
// auto-battler combat simulator over hex boards.
package main

import "github.com/nicoberrocal/arenaCore/cmd"

func main() {
	cmd.Execute()
}
