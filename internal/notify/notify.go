package notify

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"
)

const (
	RegisterMessageType    = "register"
	RecipeReadyMessageType = "recipe_ready"
)

// RegisterMessage is sent by a client to subscribe its device token.
// The app side uses a single fixed delivery token per install.
type RegisterMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// RecipeReadyMessage announces that a server-side generation finished
// and the recipe row is now readable from the store.
type RecipeReadyMessage struct {
	Type     string `json:"type"`
	RecipeID int64  `json:"recipe_id"`
	Title    string `json:"title"`
}

type Client struct {
	Token string
	Addr  *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(token string, addr *net.UDPAddr) {
	if token == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[token] = Client{Token: token, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(token string) {
	r.mu.Lock()
	delete(r.clients, token)
	r.mu.Unlock()
}

func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger
	conn     *net.UDPConn
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger}
}

func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.conn = conn
	defer conn.Close()

	s.logger.Printf("UDP notify server listening on %s", s.addr)

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.logger.Printf("invalid UDP message from %s: %v", addr, err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.Token, addr)
		s.logger.Printf("registered UDP client %s (%s)", msg.Token, addr)
	}
}

// Close stops the read loop; Run returns shortly after.
func (s *Server) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// BroadcastRecipeReady pushes a completion notice to every registered
// device. One retry per client, then the stale registration is dropped.
func (s *Server) BroadcastRecipeReady(recipeID int64, title string) {
	if s.conn == nil {
		s.logger.Printf("UDP notify server not running")
		return
	}
	payload, err := json.Marshal(RecipeReadyMessage{
		Type:     RecipeReadyMessageType,
		RecipeID: recipeID,
		Title:    title,
	})
	if err != nil {
		s.logger.Printf("failed to marshal broadcast: %v", err)
		return
	}

	clients := s.registry.Snapshot()
	for _, client := range clients {
		s.sendWithRetry(client, payload)
	}
}

func (s *Server) sendWithRetry(client Client, payload []byte) {
	if err := s.sendOnce(client, payload); err == nil {
		return
	}
	if err := s.sendOnce(client, payload); err != nil {
		s.logger.Printf("failed to notify token %s at %s: %v", client.Token, client.Addr, err)
		s.registry.Remove(client.Token)
	}
}

func (s *Server) sendOnce(client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	_, err := s.conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.Token == "" || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}
