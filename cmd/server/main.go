package main

import (
	"context"
	"log"

	"github.com/rbustosc/fieldsync/internal/server"
	"github.com/rbustosc/fieldsync/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
