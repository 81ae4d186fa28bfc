package main

import (
	"flag"
	"os"

	"github.com/schoolfeed/schoolfeed/publisher"
	"github.com/schoolfeed/schoolfeed/server"
	"github.com/schoolfeed/schoolfeed/server/middlewares"
	. "github.com/schoolfeed/schoolfeed/utils"
	"github.com/schoolfeed/schoolfeed/utils/dotenv"
	. "github.com/schoolfeed/schoolfeed/utils/log"
)

func main() {
	flag.Parse()

	if err := dotenv.LoadDotEnvs(); err != nil {
		Log.Fatal("fail to load env: ", err)
	}
	InitLogger()
	middlewares.Setup()

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect database: ", err)
	}
	if err := DatabaseSetupAndMigration(db); err != nil {
		Log.Fatal("fail to migrate database: ", err)
	}

	// Fan-out runs on its own worker, decoupled from request latency.
	fanout := publisher.NewFanoutEngine(db)
	fanout.Start()
	defer fanout.Wait()

	s := &server.Server{DB: db, Fanout: fanout}
	router := server.NewRouter(s)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	Log.Info("api server starts up on ", addr)
	if err := router.Run(addr); err != nil {
		Log.Fatal("api server exited: ", err)
	}
}
