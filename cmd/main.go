package main

import "plotter-bot/internal/cli"

func main() {
	cli.Execute()
}
