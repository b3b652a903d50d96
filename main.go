package main

import "github.com/sadopc/tabtrackr/internal/cli"

func main() {
	cli.Execute()
}
