package main

import (
	"os"

	"github.com/luki/proctemp/cmd/proctemp/commands"
)

func main() {
	os.Exit(commands.Execute())
}
