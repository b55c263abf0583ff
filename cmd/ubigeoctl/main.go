package main

import (
	"github.com/joho/godotenv"

	"ubigeo-api/internal/cli"
)

func main() {
	_ = godotenv.Load(".env")
	cli.Execute()
}
