package utils

import "sync"

// Notification est un toast transitoire affiché par le dashboard.
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Hub distribue les notifications aux connexions WebSocket de chaque
// utilisateur. Un envoi vers un abonné saturé est abandonné : un toast perdu
// vaut mieux qu'une mutation bloquée.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Notification]bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Notification]bool)}
}

// Subscribe enregistre un abonné pour un utilisateur et retourne le canal de
// réception plus la fonction de désabonnement.
func (h *Hub) Subscribe(userID string) (<-chan Notification, func()) {
	ch := make(chan Notification, 8)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Notification]bool)
	}
	h.subs[userID][ch] = true
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}
	return ch, unsubscribe
}

func (h *Hub) Success(userID, message string) {
	h.publish(userID, Notification{Type: "success", Message: message})
}

func (h *Hub) Error(userID, message string) {
	h.publish(userID, Notification{Type: "error", Message: message})
}

func (h *Hub) publish(userID string, n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[userID] {
		select {
		case ch <- n:
		default:
		}
	}
}
