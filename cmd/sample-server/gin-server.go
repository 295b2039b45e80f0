package main

import (
	"bytes"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/aknopov/around"
	"github.com/aknopov/around/timing"
	"github.com/gin-gonic/gin"
)

type HashRequest struct {
	Password string `json:"password"`
	Strength int    `json:"strength"`
}

type HashResponse struct {
	Hash string `json:"hash"`
}

type SumRequest struct {
	Length int `json:"length"`
}

type SumResponse struct {
	Sum string `json:"sum"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type RevertResponse struct {
	Reverted bool `json:"reverted"`
}

var serviceMethods = []string{"Hash", "Sum"}

// HTTP front of the service with intercepted methods
type server struct {
	lock     sync.RWMutex // guards service members and `reverters`
	service  *Service
	recorder *timing.Recorder
	// in order of installation
	reverters []func()
}

func newServer(service *Service, minDelay, maxDelay int) *server {
	srv := &server{service: service, recorder: timing.NewRecorder().SetLogger(diagLogger)}

	if maxDelay > 0 {
		delay := delayFactory(minDelay, maxDelay)
		srv.reverters = append(srv.reverters, around.Install(service, around.On("Hash", delay), around.On("Sum", delay)))
	}
	// timing wraps delays as well
	srv.reverters = append(srv.reverters, srv.recorder.Install(service, serviceMethods...))

	return srv
}

// Wrapper factory sleeping random number of milliseconds before calling the original
func delayFactory(minDelay, maxDelay int) func(next any) any {
	return func(next any) any {
		switch fn := next.(type) {
		case func(string, int) (string, error):
			return func(password string, strength int) (string, error) {
				sleepRandom(minDelay, maxDelay)
				return fn(password, strength)
			}
		case func(int) (string, error):
			return func(length int) (string, error) {
				sleepRandom(minDelay, maxDelay)
				return fn(length)
			}
		}
		return next
	}
}

func sleepRandom(minDelay, maxDelay int) {
	msecs := minDelay
	if maxDelay > minDelay {
		msecs += rand.Intn(maxDelay - minDelay)
	}
	time.Sleep(time.Duration(msecs) * time.Millisecond)
}

func newEngine(srv *server) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery()) // no debug logging
	assertNoErr(engine.SetTrustedProxies(nil))

	engine.POST("/hash", srv.hash)
	engine.POST("/sum", srv.sum)
	engine.GET("/stats", srv.stats)
	engine.DELETE("/stats", srv.revert)

	return engine
}

func (srv *server) hash(ctx *gin.Context) {
	var request HashRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{err.Error()})
		return
	}

	srv.lock.RLock()
	hashFn := srv.service.Hash
	srv.lock.RUnlock()

	hash, err := hashFn(request.Password, request.Strength)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, HashResponse{hash})
}

func (srv *server) sum(ctx *gin.Context) {
	var request SumRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{err.Error()})
		return
	}

	srv.lock.RLock()
	sumFn := srv.service.Sum
	srv.lock.RUnlock()

	sum, err := sumFn(request.Length)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, SumResponse{sum})
}

func (srv *server) stats(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := srv.recorder.Report(&buf); err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{err.Error()})
		return
	}
	ctx.Data(http.StatusOK, "application/yaml", buf.Bytes())
}

// Removes interception; statistics collected so far are kept
func (srv *server) revert(ctx *gin.Context) {
	srv.lock.Lock()
	reverted := len(srv.reverters) > 0
	for i := len(srv.reverters) - 1; i >= 0; i-- {
		srv.reverters[i]()
	}
	srv.reverters = nil
	srv.lock.Unlock()

	logger.Info().Msgf("-- Interception removed: %t", reverted)
	ctx.JSON(http.StatusOK, RevertResponse{reverted})
}
