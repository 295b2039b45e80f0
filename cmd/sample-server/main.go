package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aknopov/around"
	"github.com/aknopov/fancylogger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	Port = 8080
)

var (
	logger = fancylogger.NewLogger(os.Stderr, fancylogger.LiteFg)
	// diagnostics of interception and failed calls
	diagLogger = zerolog.Nop()
)

func main() {
	port := flag.Int("port", Port, "listening port")
	minDelay := flag.Int("min", 0, "minimum response delay (msec)")
	maxDelay := flag.Int("max", 0, "maximum response delay (msec)")
	verbose := flag.Bool("v", false, "log skipped interceptions and failed calls")
	flag.Parse()

	if *verbose {
		diagLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		around.SetLogger(diagLogger)
	}
	logger.Info().Msgf("Using port=%d, minDelay=%d, maxDelay=%d", *port, *minDelay, *maxDelay)

	gin.SetMode(gin.ReleaseMode)
	engine := newEngine(newServer(newService(), *minDelay, *maxDelay))

	logger.Info().Msg("-- Starting server...")
	assertNoErr(engine.Run(fmt.Sprintf(":%d", *port)))
}

func assertNoErr(err error) {
	if err != nil {
		panic(err)
	}
}
