package session

import (
	"context"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// Profile is what the server remembers about a browser between visits: the
// last name and hat color used to join a room, so the login form can be
// prefilled.
type Profile struct {
	Name      string
	Folder    string
	CreatedAt time.Time
}

const profileKey = "profile"

func init() {
	gob.Register(Profile{})
}

const sessionTTL = 30 * time.Minute

type Manager struct {
	*scs.SessionManager
}

func NewManager(secure bool) *Manager {
	return &Manager{SessionManager: newSessionManager(secure)}
}

func newSessionManager(secure bool) *scs.SessionManager {
	manager := scs.New()
	manager.Store = memstore.New()
	manager.Lifetime = sessionTTL
	manager.Cookie.Name = "hatroom_session"
	manager.Cookie.Path = "/"
	manager.Cookie.HttpOnly = true
	manager.Cookie.SameSite = http.SameSiteLaxMode
	manager.Cookie.Secure = secure
	return manager
}

// SaveProfile rotates the session token and stores the profile.
func (m *Manager) SaveProfile(ctx context.Context, name, folder string) error {
	if err := m.RenewToken(ctx); err != nil {
		return err
	}
	m.Put(ctx, profileKey, Profile{
		Name:      name,
		Folder:    folder,
		CreatedAt: time.Now(),
	})
	return nil
}

// Profile returns the stored profile for this request, if any.
func (m *Manager) Profile(r *http.Request) (Profile, bool) {
	p, ok := m.Get(r.Context(), profileKey).(Profile)
	if !ok || p.Name == "" {
		return Profile{}, false
	}
	return p, true
}

func (m *Manager) DestroySession(ctx context.Context) error {
	return m.Destroy(ctx)
}
