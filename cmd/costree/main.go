package main

import "github.com/MrJamesThe3rd/costree/cmd/costree/internal/cli"

func main() {
	cli.Execute()
}
