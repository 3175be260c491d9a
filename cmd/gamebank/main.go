package main

import (
	"github.com/avetrov/gamebank/internal/cli"
)

func main() {
	cli.Execute()
}
