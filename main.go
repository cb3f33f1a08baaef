package main

import "github.com/citruslab/go-frc-metrics/cmd"

func main() {
	cmd.Execute()
}
