package main

import (
	"os"
)

// @title           Career Chat API
// @version         1.0
// @description     Chat history relay for the career guidance mentor
// @BasePath        /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
