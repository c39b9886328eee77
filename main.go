package main

import (
	"os"

	"github.com/aleister1102/burfisher/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
