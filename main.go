package main

import "puffin/cmd"

func main() {
	cmd.Execute()
}
