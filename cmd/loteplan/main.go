package main

import "github.com/Brisa-Ol/loteplan-client/cmd/loteplan/cmd"

func main() {
	cmd.Execute()
}
