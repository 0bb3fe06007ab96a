package main

import "github.com/powerlab/transistordb/cmd/tdb/cmd"

func main() {
	cmd.Execute()
}
