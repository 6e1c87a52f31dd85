package main

import "github.com/samsaffron/term-prettify/cmd"

func main() {
	cmd.Execute()
}
