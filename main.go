package main

import cmd "github.com/soren-n/dusk/cmd/dusk"

func main() {
	cmd.Execute()
}
