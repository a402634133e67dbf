package main

import (
	"log"
	"net/http"

	"github.com/nezferoz/fashion-park-sub001/simulator"
)

func main() {
	cfg := simulator.ConfigFromEnv()

	mux := simulator.NewMux(cfg)

	if err := http.ListenAndServe(":"+cfg.HttpPort, mux); err != nil {
		log.Fatal(err)
	}
}
