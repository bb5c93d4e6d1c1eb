package main

import (
	"log"

	"live-translator/internal/cli"
)

func main() {
	if err := cli.Execute(nil); err != nil {
		log.Fatalf("live-translator: %v", err)
	}
}
