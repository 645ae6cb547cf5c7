package wsserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"ob-engine/internal/orderbook"
	"ob-engine/internal/subscriptions"

	"github.com/gorilla/websocket"
)

// abstraction of subscription user manager for the downstream server
type SubscriptionManager interface {
	AddNewUser(conn *websocket.Conn) *subscriptions.User
	RemoveUser(conn *websocket.Conn)
	SubUser(conn *websocket.Conn, currPair string, sub bool)
}

// abstraction of orderbook for the downstream server
type OBReader interface {
	Pairs() []string
	GetOrderBook(curr string) ([]byte, error)
	Summary(curr string) (string, error)
}

type RequestProcessor struct {
	obReader OBReader
	subs     SubscriptionManager
}

func NewProcessor(obReader OBReader, subs SubscriptionManager) *RequestProcessor {
	return &RequestProcessor{
		obReader: obReader,
		subs:     subs,
	}
}

func (p *RequestProcessor) handleConnection(conn *websocket.Conn) {
	// separate user for each connection to manage subscriptions
	user := p.subs.AddNewUser(conn)

	// remove user from the store when closing the connection
	defer func() {
		p.subs.RemoveUser(conn)
		err := conn.Close()
		if err != nil {
			slog.Error("Error on Closing the Connection", "error", err)
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			slog.Debug("Connection closed", "user", user.ID, "error", err)

			break
		}

		slog.Info("Message Received: ", "user", user.ID, "message", string(message))

		command, currPair, _ := strings.Cut(strings.TrimSpace(string(message)), " ")
		currPair = strings.TrimSpace(currPair)

		switch {
		case command == subscribe && currPair != "":
			p.handleSubscription(conn, user, currPair)
		case command == unsubscribe && currPair != "":
			p.handleUnsubscription(conn, currPair)
		default:
			p.reply(user, "ERR unknown command")
		}
	}
}

// handle user subscription request. the user is subscribed before the
// snapshot is read, and pushes wait behind the snapshot write, so every
// update not in the snapshot follows it on the connection.
func (p *RequestProcessor) handleSubscription(conn *websocket.Conn, user *subscriptions.User, currPair string) {
	slog.Info("Order Book Subscription Requested", "currency pair", currPair)

	p.subs.SubUser(conn, currPair, true)

	var readErr error

	err := user.WriteFrom(func() ([]byte, error) {
		book, err := p.obReader.GetOrderBook(currPair)
		readErr = err

		return book, err
	})

	switch {
	case readErr != nil:
		p.subs.SubUser(conn, currPair, false)
		p.reply(user, "ERR "+readErr.Error())
	case err != nil:
		slog.Error("Error Writing Message: ", "error", err)
	}
}

// handle user unsubscription request. remove currency subscription from the user
func (p *RequestProcessor) handleUnsubscription(conn *websocket.Conn, currPair string) {
	slog.Info("Order Book Unsubscription Requested", "curr pair", currPair)
	p.subs.SubUser(conn, currPair, false)
}

func (p *RequestProcessor) reply(user *subscriptions.User, message string) {
	if err := user.Write([]byte(message)); err != nil {
		slog.Error("Error Writing Message: ", "error", err)
	}
}

func (p *RequestProcessor) listBooks(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(p.obReader.Pairs()); err != nil {
		slog.Error("Error on encoding pairs", "error", err)
	}
}

func (p *RequestProcessor) getBook(w http.ResponseWriter, r *http.Request) {
	book, err := p.obReader.GetOrderBook(r.URL.Query().Get("pair"))
	if err != nil {
		writeError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(book)
}

func (p *RequestProcessor) getSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := p.obReader.Summary(r.URL.Query().Get("pair"))
	if err != nil {
		writeError(w, err)

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(summary))
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, orderbook.ErrUnknownPair) {
		http.Error(w, err.Error(), http.StatusNotFound)

		return
	}

	http.Error(w, err.Error(), http.StatusInternalServerError)
}
