package main

import "github.com/pythonicvarun/anveshak/cmd/anveshak/cli"

func main() {
	cli.Execute()
}
