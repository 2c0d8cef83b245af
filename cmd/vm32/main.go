package main

import "github.com/kvasm/vm32/cmd/vm32/cmd"

func main() {
	cmd.Execute()
}
