package main

import "github.com/twiced-technology-gmbh/lumina/cmd"

func main() {
	cmd.Execute()
}
