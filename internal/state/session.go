package state

import "github.com/flipcart/storefront/internal/models"

// Session returns the stored identity, or the guest zero value when nothing
// usable is stored. Pure local read, no network.
func (s *Store) Session() models.Session {
	var sess models.Session
	if !s.get(sessionKey, &sess) {
		return models.Session{}
	}
	return sess
}

// SetSession persists token and user together; callers never see one without
// the other.
func (s *Store) SetSession(sess models.Session) error {
	return s.put(sessionKey, sess)
}

func (s *Store) ClearSession() error {
	return s.delete(sessionKey)
}
