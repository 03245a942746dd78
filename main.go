package main

import "github.com/emrgen/custody/cmd"

func main() {
	cmd.Execute()
}
