package main

import "index-cleaner/internal/cli"

func main() {
	cli.Execute()
}
