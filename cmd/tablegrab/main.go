package main

import "github.com/example/tablegrab/cmd"

func main() {
	cmd.Execute()
}
