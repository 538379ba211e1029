package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxNoticesPerUser = 20

// AdminAudience receives notices raised by admin console actions.
const AdminAudience = "admin"

const ActionReauthenticate = "reauthenticate"

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a transient message for the user, such as a warning that an
// order could not be mirrored. Action names a remediation the client can
// offer.
type Notice struct {
	ID        string      `json:"id"`
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	Action    string      `json:"action,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type noticeBoard struct {
	mu      sync.Mutex
	now     func() time.Time
	pending map[string][]Notice
}

func newNoticeBoard(now func() time.Time) *noticeBoard {
	return &noticeBoard{now: now, pending: make(map[string][]Notice)}
}

func (b *noticeBoard) post(audience string, n Notice) {
	n.ID = uuid.NewString()
	n.CreatedAt = b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	list := append(b.pending[audience], n)
	if len(list) > maxNoticesPerUser {
		list = list[len(list)-maxNoticesPerUser:]
	}
	b.pending[audience] = list
}

// drain returns and forgets the audience's pending notices.
func (b *noticeBoard) drain(audience string) []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.pending[audience]
	delete(b.pending, audience)
	if list == nil {
		return []Notice{}
	}
	return list
}
