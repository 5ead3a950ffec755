package main

import (
	"github.com/safesight/safesight-backend/internal/bootstrap"
)

func main() {
	bootstrap.Run()
}
