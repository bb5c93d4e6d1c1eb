package main

import (
	"embed"
	"log"

	"live-translator/internal/cli"
)

//go:embed frontend/index.html frontend/app.js frontend/style.css
var appAssets embed.FS

func main() {
	if err := cli.Execute(appAssets); err != nil {
		log.Fatalf("live-translator: %v", err)
	}
}
