package main

import "celestial/internal/cli"

func main() {
	cli.Execute()
}
