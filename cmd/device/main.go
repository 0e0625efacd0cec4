package main

import (
	"context"
	"log"

	"github.com/rbustosc/fieldsync/internal/device/app"
	"github.com/rbustosc/fieldsync/internal/device/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	a, err := app.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	a.Run(ctx)

}
