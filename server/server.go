package server

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"emobility/internal"
	"emobility/internal/config"
	"emobility/ocpp"
	"emobility/utility"
)

const (
	wsEndpoint = "/ws/:tenant/:id"
)

type Server struct {
	conf           *config.Config
	httpServer     *http.Server
	upgrader       websocket.Upgrader
	messageHandler func(ws *WebSocket, data []byte) error
	logger         internal.LogHandler
	connections    map[string]*WebSocket
	mux            sync.Mutex
}

type WebSocket struct {
	conn     *websocket.Conn
	id       string
	tenant   string
	uniqueId string
	closed   atomic.Bool
	sendMux  sync.Mutex
}

func (ws *WebSocket) ID() string {
	return ws.id
}

func (ws *WebSocket) TenantID() string {
	return ws.tenant
}

func (ws *WebSocket) UniqueId() string {
	return ws.uniqueId
}

func (ws *WebSocket) SetUniqueId(uniqueId string) {
	ws.uniqueId = uniqueId
}

// IsClosed may be called from the message handler while register closes the
// socket from another goroutine, hence the atomic.
func (ws *WebSocket) IsClosed() bool {
	return ws.closed.Load()
}

func (ws *WebSocket) write(data []byte) error {
	ws.sendMux.Lock()
	defer ws.sendMux.Unlock()
	return ws.conn.WriteMessage(websocket.TextMessage, data)
}

func connectionKey(tenant, id string) string {
	return tenant + "/" + id
}

func NewServer(conf *config.Config, logger internal.LogHandler) *Server {
	server := Server{
		conf:        conf,
		logger:      logger,
		upgrader:    websocket.Upgrader{Subprotocols: []string{}},
		connections: make(map[string]*WebSocket),
	}
	router := httprouter.New()
	server.Register(router)
	server.httpServer = &http.Server{
		Handler: router,
	}
	return &server
}

func (s *Server) AddSupportedSubProtocol(proto string) {
	for _, sub := range s.upgrader.Subprotocols {
		if sub == proto {
			return
		}
	}
	s.upgrader.Subprotocols = append(s.upgrader.Subprotocols, proto)
}

func (s *Server) SetMessageHandler(handler func(ws *WebSocket, data []byte) error) {
	s.messageHandler = handler
}

func (s *Server) Register(router *httprouter.Router) {
	router.GET(wsEndpoint, s.handleWsRequest)
}

func (s *Server) handleWsRequest(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	tenant := params.ByName("tenant")
	id := params.ByName("id")
	s.logger.Debug(fmt.Sprintf("connection initiated from remote %s", r.RemoteAddr))

	s.upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}

	clientSubProto := websocket.Subprotocols(r)
	requestedProto := ""
	for _, proto := range clientSubProto {
		if len(s.upgrader.Subprotocols) == 0 {
			// supporting all protocols
			requestedProto = proto
			break
		}
		if utility.Contains(s.upgrader.Subprotocols, proto) {
			requestedProto = proto
			break
		}
	}
	responseHeader := http.Header{}
	if requestedProto != "" {
		responseHeader.Add("Sec-WebSocket-Protocol", requestedProto)
	}

	conn, err := s.upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		s.logger.Error("upgrade failed", err)
		return
	}

	s.logger.Debug(fmt.Sprintf("upgraded socket for %s/%s with proto %s", tenant, id, requestedProto))
	ws := WebSocket{
		conn:   conn,
		id:     id,
		tenant: tenant,
	}
	s.register(&ws)

	go s.messageReader(&ws)
}

func (s *Server) register(ws *WebSocket) {
	s.mux.Lock()
	defer s.mux.Unlock()
	key := connectionKey(ws.tenant, ws.id)
	if existing, ok := s.connections[key]; ok {
		existing.closed.Store(true)
		_ = existing.conn.Close()
	}
	s.connections[key] = ws
	observeConnections(ws.tenant, len(s.connections))
}

func (s *Server) unregister(ws *WebSocket) {
	s.mux.Lock()
	defer s.mux.Unlock()
	key := connectionKey(ws.tenant, ws.id)
	if s.connections[key] == ws {
		delete(s.connections, key)
	}
	observeConnections(ws.tenant, len(s.connections))
}

func (s *Server) connection(tenant, id string) *WebSocket {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.connections[connectionKey(tenant, id)]
}

func (s *Server) messageReader(ws *WebSocket) {
	conn := ws.conn
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, 3001) {
				s.logger.Debug(fmt.Sprintf("id %s leaving session", ws.id))
			} else {
				s.logger.Debug(fmt.Sprintf("id %s is closing session %s", ws.id, err))
			}
			ws.closed.Store(true)
			s.unregister(ws)
			err = conn.Close()
			if err != nil {
				s.logger.Warn(fmt.Sprintf("error while closing socket %s %s", ws.id, err))
			}
			return
		}
		s.logger.RawDataEvent("IN", string(message))
		if s.messageHandler != nil {
			err = s.messageHandler(ws, message)
			if err != nil {
				s.logger.Error(fmt.Sprintf("handling message from %s", ws.id), err)
				continue
			}
		}
	}
}

func (s *Server) Start() error {
	if s.conf == nil {
		return utility.Err("configuration not loaded")
	}
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	s.logger.Debug(fmt.Sprintf("starting server on %s", serverAddress))
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}
	if s.conf.Listen.TLS {
		s.logger.Debug("starting https TLS server")
		err = s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	} else {
		s.logger.Debug("starting http server")
		err = s.httpServer.Serve(listener)
	}
	return err
}

func (s *Server) SendResponse(ws *WebSocket, response ocpp.Response) error {
	callResult, _ := CreateCallResult(response, ws.UniqueId())
	data, err := callResult.MarshalJSON()
	if err != nil {
		s.logger.Error("error encoding response", err)
		return err
	}
	s.logger.RawDataEvent("OUT", string(data))
	if err = ws.write(data); err != nil {
		s.logger.Error("error sending response", err)
	}
	return err
}

func (s *Server) SendError(ws *WebSocket, code, description string) error {
	callError := CallError{
		UniqueId:    ws.UniqueId(),
		Code:        code,
		Description: description,
	}
	data, err := callError.MarshalJSON()
	if err != nil {
		return err
	}
	s.logger.RawDataEvent("OUT", string(data))
	return ws.write(data)
}

// SendRequest delivers a request to a connected station and returns the
// generated unique id the response will be correlated with.
func (s *Server) SendRequest(tenant, chargeBoxId string, request ocpp.Request) (string, error) {
	ws := s.connection(tenant, chargeBoxId)
	if ws == nil {
		return "", fmt.Errorf("station %s is not connected", chargeBoxId)
	}
	callRequest := CallRequest{
		TypeId:   CallTypeRequest,
		UniqueId: utility.NewUUID(),
		feature:  request.GetFeatureName(),
		Payload:  request,
	}
	data, err := callRequest.MarshalJSON()
	if err != nil {
		return "", err
	}
	s.logger.RawDataEvent("OUT", string(data))
	if err = ws.write(data); err != nil {
		return "", err
	}
	return callRequest.UniqueId, nil
}
