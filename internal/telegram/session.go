package telegram

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kitbuilder587/research-assistant/internal/domain"
)

const defaultConversationTitle = "New Chat"

var ErrConversationNotFound = errors.New("conversation not found")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string
	Content string
	Mode    domain.Mode
}

// Conversation - копия состояния разговора, менять ее безопасно
type Conversation struct {
	ID        string
	Title     string
	Messages  []ChatMessage
	CreatedAt time.Time
}

type chatSession struct {
	mode    domain.Mode
	current string
	order   []string // порядок создания, по нему нумеруем в /chats
	convs   map[string]*Conversation
}

// SessionStore - разговоры по чатам, только в памяти.
// Живут до перезапуска процесса.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[int64]*chatSession
	defaultMode domain.Mode
	now         func() time.Time
}

func NewSessionStore(defaultMode domain.Mode) *SessionStore {
	if !defaultMode.IsValid() {
		defaultMode = domain.ModeDepth
	}
	return &SessionStore{
		sessions:    make(map[int64]*chatSession),
		defaultMode: defaultMode,
		now:         time.Now,
	}
}

// session создает сессию с пустым разговором при первом обращении.
// Вызывать под s.mu.
func (s *SessionStore) session(chatID int64) *chatSession {
	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &chatSession{mode: s.defaultMode, convs: make(map[string]*Conversation)}
		s.sessions[chatID] = sess
		s.addConversation(sess)
	}
	return sess
}

func (s *SessionStore) addConversation(sess *chatSession) *Conversation {
	c := &Conversation{
		ID:        uuid.NewString(),
		Title:     defaultConversationTitle,
		CreatedAt: s.now(),
	}
	sess.convs[c.ID] = c
	sess.order = append(sess.order, c.ID)
	sess.current = c.ID
	return c
}

// NewConversation создает разговор и делает его текущим
func (s *SessionStore) NewConversation(chatID int64) Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(chatID)
	// пустой текущий разговор переиспользуем, чтобы /new подряд не плодил "New Chat"
	if cur := sess.convs[sess.current]; len(cur.Messages) == 0 {
		return copyConversation(cur)
	}
	return copyConversation(s.addConversation(sess))
}

func (s *SessionStore) Current(chatID int64) Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(chatID)
	return copyConversation(sess.convs[sess.current])
}

// List - разговоры в порядке создания и индекс текущего (с 0)
func (s *SessionStore) List(chatID int64) ([]Conversation, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(chatID)
	out := make([]Conversation, len(sess.order))
	current := 0
	for i, id := range sess.order {
		out[i] = copyConversation(sess.convs[id])
		if id == sess.current {
			current = i
		}
	}
	return out, current
}

// Switch делает текущим разговор с номером n (с 1, как в /chats)
func (s *SessionStore) Switch(chatID int64, n int) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(chatID)
	if n < 1 || n > len(sess.order) {
		return Conversation{}, ErrConversationNotFound
	}
	sess.current = sess.order[n-1]
	return copyConversation(sess.convs[sess.current]), nil
}

// AddMessage дописывает сообщение в разговор convID. Возвращает true,
// если это первое сообщение разговора.
func (s *SessionStore) AddMessage(chatID int64, convID string, m ChatMessage) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.session(chatID).convs[convID]
	if !ok {
		return false, ErrConversationNotFound
	}
	c.Messages = append(c.Messages, m)
	return len(c.Messages) == 1, nil
}

func (s *SessionStore) SetTitle(chatID int64, convID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.session(chatID).convs[convID]
	if !ok {
		return ErrConversationNotFound
	}
	c.Title = title
	return nil
}

func (s *SessionStore) Mode(chatID int64) domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session(chatID).mode
}

func (s *SessionStore) SetMode(chatID int64, mode domain.Mode) error {
	if !mode.IsValid() {
		return domain.ErrInvalidMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(chatID).mode = mode
	return nil
}

func copyConversation(c *Conversation) Conversation {
	out := *c
	out.Messages = make([]ChatMessage, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
