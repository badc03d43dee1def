package main

import (
	"log"

	"emobility/internal/config"
	"emobility/metrics"
	"emobility/server"
)

func main() {
	conf, err := config.GetConfig()
	if err != nil {
		log.Println("configuration failed", err)
		return
	}

	centralSystem, err := server.NewCentralSystem(conf)
	if err != nil {
		log.Println("central system initialization failed", err)
		return
	}

	go func() {
		if err := metrics.Listen(conf); err != nil {
			log.Println("metrics server failed", err)
		}
	}()

	centralSystem.Start()
}
