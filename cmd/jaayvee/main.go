package main

import (
	"log"

	"github.com/MrSnakeDoc/jaayvee/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ jaayvee failed to start: %v", err)
	}
}
