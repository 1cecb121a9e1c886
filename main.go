package main

import "github.com/KaramelBytes/flixlens-cli/cmd"

func main() {
	cmd.Execute()
}
