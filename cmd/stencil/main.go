package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		renderRunError(err)
		os.Exit(1)
	}
}
