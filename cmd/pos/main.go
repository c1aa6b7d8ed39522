package main

import "github.com/fekuna/omnipos-pos-agent/internal/cli"

func main() {
	cli.Execute()
}
