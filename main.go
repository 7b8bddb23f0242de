package main

import "excavator/cmd"

func main() {
	cmd.Execute()
}
