package main

import "os"

func main() {
	defer cleanup()
	if len(os.Args) > 5 {
		os.Exit(2) // want "direct call to os.Exit is not allowed in main"
	}
	func() {
		os.Exit(1) // want "direct call to os.Exit is not allowed in main"
	}()
}

func cleanup() {
	os.Exit(0)
}
