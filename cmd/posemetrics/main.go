// main is the entry point for the posemetrics CLI.
package main

import (
	"github.com/ghrelinlab/posemetrics/cmd"
	"github.com/ghrelinlab/posemetrics/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Cannot execute command", err)
	}
}
