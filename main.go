package main

import "github.com/twiced-technology-gmbh/tasknest/cmd"

func main() {
	cmd.Execute()
}
