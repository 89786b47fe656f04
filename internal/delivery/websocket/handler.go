package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

const pushLimit = 50

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

type Handler struct {
	setupRepo domain.SetupRepository
}

func NewHandler(setupRepo domain.SetupRepository) *Handler {
	return &Handler{setupRepo: setupRepo}
}

// Handle upgrades the connection and pushes the current top setups
// immediately, then on every poll tick until the client goes away.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	defer conn.Close()

	log.Println("New Client Connected")

	if err := h.push(conn, r); err != nil {
		log.Println("Write error:", err)
		return
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := h.push(conn, r); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}

func (h *Handler) push(conn *websocket.Conn, r *http.Request) error {
	setups, err := h.setupRepo.GetTopSetups(r.Context(), pushLimit)
	if err != nil {
		log.Println("Error loading setups for push:", err)
		return nil
	}
	if setups == nil {
		setups = []domain.Setup{}
	}
	return conn.WriteJSON(setups)
}
