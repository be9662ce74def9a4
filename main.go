package main

import "enchlib/cmd"

func main() {
	cmd.Execute()
}
