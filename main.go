package main

import "github.com/julianfbeck/plex-cli/cmd"

func main() {
	cmd.Execute()
}
