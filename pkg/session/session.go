package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"liyu1981.xyz/tank-console/pkg/common"
)

const (
	CookieName = "tank_console"
	ContextKey = "console_session"

	tokenKey = "token"
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    FlashKind
	Message string
}

func init() {
	gob.Register(Flash{})
}

// Session is the operator's session for one request. The backend token is
// its only credential; it is set by Init after a successful login and
// removed by Clear on logout or when the backend rejects it.
type Session struct {
	raw    *sessions.Session
	maxAge int
	r      *http.Request
	w      http.ResponseWriter
}

func (s *Session) ID() string {
	return s.raw.ID
}

func (s *Session) Token() string {
	token, _ := s.raw.Values[tokenKey].(string)
	return token
}

func (s *Session) HasToken() bool {
	return s.Token() != ""
}

// Init stores token under a fresh session ID and saves it.
func (s *Session) Init(token string) error {
	if s.raw.ID != "" {
		s.raw.Options.MaxAge = -1
		if err := s.raw.Save(s.r, s.w); err != nil {
			return err
		}
	}
	s.reset()
	s.raw.Values[tokenKey] = token
	return s.Save()
}

// Clear drops the token and the persisted record. The Session stays usable
// for flashes, which land in a new anonymous record.
func (s *Session) Clear() error {
	s.raw.Options.MaxAge = -1
	err := s.raw.Save(s.r, s.w)
	s.reset()
	return err
}

func (s *Session) reset() {
	s.raw.ID = ""
	s.raw.IsNew = true
	s.raw.Values = map[interface{}]interface{}{}
	s.raw.Options.MaxAge = s.maxAge
}

func (s *Session) AddFlash(kind FlashKind, message string) {
	s.raw.AddFlash(Flash{Kind: kind, Message: message})
}

// Flashes pops pending flashes. The caller saves the session afterwards.
func (s *Session) Flashes() []Flash {
	var flashes []Flash
	for _, f := range s.raw.Flashes() {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}

func (s *Session) Save() error {
	return s.raw.Save(s.r, s.w)
}

// Middleware loads the session of every request and puts it on the gin context.
func Middleware(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := store.Get(c.Request, CookieName)
		if err != nil {
			common.GetCategoryLogger(common.LoggerNameSession, common.LoggerCategorySessionLoad).
				Warn("Session load failed, using a fresh one", zap.Error(err))
		}
		c.Set(ContextKey, &Session{raw: raw, maxAge: raw.Options.MaxAge, r: c.Request, w: c.Writer})
		c.Next()
	}
}

func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(ContextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return nil
}

// RequireToken lets the request through only when the session holds a
// token; otherwise it redirects to loginPath and renders nothing else.
func RequireToken(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := FromContext(c)
		if s == nil || !s.HasToken() {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
