package main

import (
	"missiond/internal/cli"
)

func main() {
	cli.Execute()
}
