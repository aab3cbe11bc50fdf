package main

import "menufic/commands"

func main() {
	commands.Execute()
}
