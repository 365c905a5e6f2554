package reducer

import (
	"encoding/json"

	"github.com/roach88/procount/internal/domain"
)

const (
	KindAddNotification       Kind = "ADD_NOTIFICATION"
	KindRemoveNotification    Kind = "REMOVE_NOTIFICATION"
	KindClearAllNotifications Kind = "CLEAR_ALL_NOTIFICATIONS"
)

// AddNotification queues an in-app message. The wire payload is the
// notification itself; the id is assigned here.
type AddNotification struct {
	Notification domain.Notification
}

func (AddNotification) Kind() Kind { return KindAddNotification }

func (a *AddNotification) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &a.Notification)
}

func (a AddNotification) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Notification)
}

func (a AddNotification) apply(r *Reducer, s *State) *State {
	n := a.Notification
	n.ID = r.idOr(n.ID, "notif")
	if n.Type == "" {
		n.Type = domain.NotifyInfo
	}
	next := *s
	next.Notifications = appended(s.Notifications, n)
	return &next
}

// RemoveNotification dismisses one message. The wire payload is the bare id.
type RemoveNotification struct {
	ID string
}

func (RemoveNotification) Kind() Kind { return KindRemoveNotification }

func (a *RemoveNotification) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &a.ID)
}

func (a RemoveNotification) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ID)
}

func (a RemoveNotification) apply(_ *Reducer, s *State) *State {
	notes, ok := removed(s.Notifications, a.ID)
	if !ok {
		return s
	}
	next := *s
	next.Notifications = notes
	return &next
}

type ClearAllNotifications struct{}

func (ClearAllNotifications) Kind() Kind { return KindClearAllNotifications }

func (ClearAllNotifications) apply(_ *Reducer, s *State) *State {
	if len(s.Notifications) == 0 {
		return s
	}
	next := *s
	next.Notifications = []domain.Notification{}
	return &next
}
