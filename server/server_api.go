package server

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"emobility/api"
	"emobility/internal"
	"emobility/internal/config"
)

const (
	commandEndpoint = "/api/command"
	queryEndpoint   = "/api/query"
)

// Api is the operator surface: POST /api/command proxies a protocol request
// to a connected station, POST /api/query reads stored state.
type Api struct {
	conf           *config.Config
	httpServer     *http.Server
	requestHandler func(w http.ResponseWriter, command CentralSystemCommand) error
	queryHandler   *api.Handler
	logger         internal.LogHandler
}

func NewServerApi(conf *config.Config, logger internal.LogHandler) *Api {
	queryHandler := api.NewApiHandler()
	queryHandler.SetLogger(logger)
	server := Api{
		conf:         conf,
		logger:       logger,
		queryHandler: queryHandler,
	}
	mux := http.NewServeMux()
	mux.HandleFunc(commandEndpoint, server.handleCommand)
	mux.HandleFunc(queryEndpoint, server.handleQuery)
	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", conf.Api.BindIP, conf.Api.Port),
		Handler: mux,
	}
	return &server
}

func (s *Api) Start() error {
	if s.conf.Api.TLS {
		cert, err := tls.LoadX509KeyPair(s.conf.Api.CertFile, s.conf.Api.KeyFile)
		if err != nil {
			return fmt.Errorf("api: failed to load certificate: %v", err)
		}
		s.httpServer.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.httpServer.ListenAndServeTLS("", "")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Api) SetRequestHandler(handler func(w http.ResponseWriter, command CentralSystemCommand) error) {
	s.requestHandler = handler
}

func (s *Api) SetDatabase(database internal.Database) {
	s.queryHandler.SetDatabase(database)
}

func (s *Api) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.logger.Warn(fmt.Sprintf("api: invalid method %s from %s", r.Method, r.RemoteAddr))
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("api: error reading body from %s: %s", r.RemoteAddr, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var cmd CentralSystemCommand
	if err = json.Unmarshal(body, &cmd); err != nil {
		s.logger.Warn(fmt.Sprintf("api: error parsing command from %s: %s", r.RemoteAddr, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err = s.requestHandler(w, cmd); err != nil {
		s.logger.Warn(fmt.Sprintf("api: error sending command %s to %s: %s", cmd.FeatureName, cmd.ChargeBoxId, err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

func (s *Api) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var call api.Call
	if err = json.Unmarshal(body, &call); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	call.Remote = r.RemoteAddr
	data := s.queryHandler.HandleApiCall(&call)
	if data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	if _, err = w.Write(data); err != nil {
		s.logger.Error("api: writing query response", err)
	}
}
