package main

import "flyerhub/internal/cli"

func main() {
	cli.Execute()
}
