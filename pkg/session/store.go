package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/tank-console/pkg/common"
	"liyu1981.xyz/tank-console/pkg/models"
)

const maxRecordLength = 64 * 1024

// GormStore keeps session values in the session_records table. The cookie
// carries only the signed and encrypted record ID.
type GormStore struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options
	db      *gorm.DB
}

var _ sessions.Store = (*GormStore)(nil)

// NewGormStore builds a store; keyPairs are hash/block key pairs as in securecookie.CodecsFromPairs.
func NewGormStore(conn *gorm.DB, maxAge int, keyPairs ...[]byte) *GormStore {
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, codec := range codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxLength(maxRecordLength)
			sc.MaxAge(maxAge)
		}
	}

	return &GormStore{
		Codecs: codecs,
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   common.IsProduction(),
		},
		db: conn,
	}
}

func (s *GormStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

func (s *GormStore) New(r *http.Request, name string) (*sessions.Session, error) {
	logger := common.GetCategoryLogger(common.LoggerNameSession, common.LoggerCategorySessionLoad)

	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, cookie.Value, &id, s.Codecs...); err != nil {
		// unreadable cookie, start over
		logger.Debug("Discarding session cookie", zap.Error(err))
		return session, nil
	}

	var record models.SessionRecord
	err = s.db.Where("id = ? AND expires_at > ?", id, time.Now()).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return session, nil
	}
	if err != nil {
		logger.Error("Failed to load session", zap.String("session_id", id), zap.Error(err))
		return session, err
	}

	if err := securecookie.DecodeMulti(name, record.Data, &session.Values, s.Codecs...); err != nil {
		logger.Warn("Discarding undecodable session record", zap.String("session_id", id), zap.Error(err))
		return session, nil
	}

	session.ID = id
	session.IsNew = false
	return session, nil
}

// Save persists the session, or deletes it when Options.MaxAge < 0.
func (s *GormStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	logger := common.GetCategoryLogger(common.LoggerNameSession, common.LoggerCategorySessionSave)

	if session.Options.MaxAge < 0 {
		if err := s.delete(session.ID); err != nil {
			return err
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		logger.Debug("Session deleted", zap.String("session_id", session.ID))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	data, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return err
	}

	record := models.SessionRecord{
		ID:        session.ID,
		Data:      data,
		ExpiresAt: time.Now().Add(time.Duration(session.Options.MaxAge) * time.Second),
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at", "expires_at"}),
	}).Create(&record).Error
	if err != nil {
		logger.Error("Failed to save session", zap.String("session_id", session.ID), zap.Error(err))
		return err
	}

	encodedID, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encodedID, session.Options))
	return nil
}

func (s *GormStore) delete(id string) error {
	if id == "" {
		return nil
	}
	return s.db.Where("id = ?", id).Delete(&models.SessionRecord{}).Error
}

// PurgeExpired removes session records past their expiry.
func (s *GormStore) PurgeExpired() (int64, error) {
	result := s.db.Where("expires_at <= ?", time.Now()).Delete(&models.SessionRecord{})
	return result.RowsAffected, result.Error
}
