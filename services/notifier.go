package services

import (
	"github.com/Dosada05/judo-pools/brackets"
	"github.com/Dosada05/judo-pools/models"
)

// Notifier pushes live updates to connected clients. *brackets.Hub implements it.
type Notifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

type nopNotifier struct{}

func (nopNotifier) BroadcastToRoom(string, interface{}) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// notifyCategory tells category viewers and the board that a category changed.
func notifyCategory(n Notifier, kind string, categoryID int, payload interface{}) {
	room := brackets.CategoryRoom(categoryID)
	n.BroadcastToRoom(room, brackets.Message{Type: kind, Payload: payload, RoomID: room})
	n.BroadcastToRoom(brackets.RoomBoard, brackets.Message{Type: kind, Payload: payload, RoomID: brackets.RoomBoard})
}

// notifyPool additionally reaches the table currently running the pool.
func notifyPool(n Notifier, assignment models.PoolAssignment, payload interface{}) {
	notifyCategory(n, brackets.MessagePoolUpdated, assignment.CategoryID, payload)
	if assignment.TableNumber > 0 {
		room := brackets.TableRoom(assignment.TableNumber)
		n.BroadcastToRoom(room, brackets.Message{Type: brackets.MessagePoolUpdated, Payload: payload, RoomID: room})
	}
}
