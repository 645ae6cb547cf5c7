package subscriptions

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"ob-engine/internal/dtos"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type OutQGetter interface {
	OutQ() <-chan *dtos.BookEvent
}

// UserGauge tracks the number of connected users.
type UserGauge interface {
	Inc()
	Dec()
}

// User is one downstream websocket connection.
type User struct {
	ID uuid.UUID

	conn      *websocket.Conn
	writeMu   sync.Mutex
	currPairs []string
}

// Write sends a text frame. gorilla connections allow a single writer, so
// writes from the push handler and the request loop are serialised here.
func (u *User) Write(message []byte) error {
	u.writeMu.Lock()
	defer u.writeMu.Unlock()

	return u.conn.WriteMessage(websocket.TextMessage, message)
}

// WriteFrom reads a message and sends it while holding the write lock, so
// pushes queued behind it reach the connection after it. An error from read
// is returned without writing.
func (u *User) WriteFrom(read func() ([]byte, error)) error {
	u.writeMu.Lock()
	defer u.writeMu.Unlock()

	message, err := read()
	if err != nil {
		return err
	}

	return u.conn.WriteMessage(websocket.TextMessage, message)
}

type Manager struct {
	OutQGetter

	gauge UserGauge
	mu    sync.RWMutex
	users map[*websocket.Conn]*User
	subs  map[string][]*User
}

func NewManager(getter OutQGetter, gauge UserGauge) *Manager {
	return &Manager{
		OutQGetter: getter,
		gauge:      gauge,
		users:      make(map[*websocket.Conn]*User),
		subs:       make(map[string][]*User),
	}
}

// AddNewUser registers a connection under a fresh id.
func (m *Manager) AddNewUser(conn *websocket.Conn) *User {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := &User{
		ID:   uuid.New(),
		conn: conn,
	}
	m.users[conn] = user
	m.gauge.Inc()

	slog.Info("User Connected", "user", user.ID)

	return user
}

// RemoveUser removes all the subscriptions from a user.
func (m *Manager) RemoveUser(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[conn]
	if !ok {
		return
	}

	for _, curr := range user.currPairs {
		m.removeSubscription(curr, user)
	}

	delete(m.users, conn)
	m.gauge.Dec()

	slog.Info("User Removed", "user", user.ID)
}

// SubUser adds or removes a subscription of the user to a currency pair.
func (m *Manager) SubUser(conn *websocket.Conn, currPair string, sub bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[conn]
	if !ok {
		return
	}

	if sub {
		if slices.Contains(user.currPairs, currPair) {
			return
		}

		user.currPairs = append(user.currPairs, currPair)
		m.subs[currPair] = append(m.subs[currPair], user)
		slog.Info("User Subscribed", "user", user.ID, "Currency", currPair)

		return
	}

	if i := slices.Index(user.currPairs, currPair); i >= 0 {
		user.currPairs = slices.Delete(user.currPairs, i, i+1)
		m.removeSubscription(currPair, user)
		slog.Info("Subscription Removed", "user", user.ID, "Currency", currPair)
	}
}

func (m *Manager) removeSubscription(currency string, user *User) {
	if i := slices.Index(m.subs[currency], user); i >= 0 {
		m.subs[currency] = slices.Delete(m.subs[currency], i, i+1)
	}

	if len(m.subs[currency]) == 0 {
		delete(m.subs, currency)
	}
}

// Subscribers returns the users subscribed to a pair.
func (m *Manager) Subscribers(currency string) []*User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.subs[currency])
}

// StartPushHandler forwards applied events to the subscribers of their pair
// until ctx is done.
func (m *Manager) StartPushHandler(ctx context.Context) error {
	slog.Info("Starting Push Handler")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-m.OutQ():
			if !ok {
				return nil
			}

			m.handlePushEvent(event)
		}
	}
}

func (m *Manager) handlePushEvent(event *dtos.BookEvent) {
	users := m.Subscribers(event.Symbol)
	if len(users) == 0 {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		slog.Error("error on parsing push event to json", "Error", err)

		return
	}

	for _, user := range users {
		if err := user.Write(message); err != nil {
			slog.Error("Error on Writing to Websocket", "user", user.ID, "Error", err)
		}
	}
}
