package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/temirov/aiprompt/internal/cli"
	"github.com/temirov/aiprompt/internal/utils"
)

const verboseEnvironmentVariable = "AIPROMPT_VERBOSE"

// main is the entry point for the aiprompt command.
func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	verbose, _ := strconv.ParseBool(os.Getenv(verboseEnvironmentVariable))
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(verbose)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(context.Background(), loggerInstance); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
