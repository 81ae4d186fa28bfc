package log

import (
	"os"

	"github.com/schoolfeed/schoolfeed/utils/dotenv"
	"github.com/schoolfeed/schoolfeed/utils/flag"
	"github.com/sirupsen/logrus"
)

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// This init function is only for testing cases, where the entry point is not
// main function. Unit test will fail with nil pointer dereference if we don't
// init here.
func init() {
	InitLogger()
}

func InitLogger() {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	// JSON in production for log collection, plain text locally for readability.
	if !flag.IsDevelopment || os.Getenv("SCHOOLFEED_ENV") == dotenv.ProdEnv {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	Log = logger.WithFields(
		logrus.Fields{"service": flag.ServiceName, "is_development": flag.IsDevelopment},
	)
}
