package main

import (
	"github.com/Levii22/planning-poker/internal/cli"
)

func main() {
	cli.Execute()
}
