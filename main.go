package main

import "ui_resolver/presentation/cli"

func main() {
	cli.Execute()
}
