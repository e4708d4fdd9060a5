package main

import (
	"log"

	"github.com/coreybb/itemgate/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("itemgate: %v", err)
	}
}
