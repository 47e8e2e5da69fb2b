package main

import "github.com/theirongolddev/sessum/cmd"

func main() {
	cmd.Execute()
}
