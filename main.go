package main

import "github.com/tanq16/slicer/cmd"

func main() {
	cmd.Execute()
}
