package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bookmarksBucket = []byte("bookmarks")
	sessionBucket   = []byte("session")

	sessionKey = []byte("current")
)

var (
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrNoSession        = errors.New("no session")
)

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// NewStore opens the bolt database at dbPath. A non-positive timeout falls back
// to one second.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bookmarksBucket, sessionBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveBookmark(article *Article) error {
	if article == nil || article.ID == "" {
		return fmt.Errorf("bookmark requires an article id")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bookmarksBucket)
		data, err := json.Marshal(&Bookmark{Article: *article, SavedAt: s.now()})
		if err != nil {
			return err
		}
		return b.Put([]byte(article.ID), data)
	})
}

func (s *Store) DeleteBookmark(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bookmarksBucket)
		if b.Get([]byte(id)) == nil {
			return ErrBookmarkNotFound
		}
		return b.Delete([]byte(id))
	})
}

func (s *Store) IsBookmarked(id string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bookmarksBucket).Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

// GetBookmarks returns all bookmarks, most recently saved first.
func (s *Store) GetBookmarks() ([]*Bookmark, error) {
	var bookmarks []*Bookmark
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bookmarksBucket)
		return b.ForEach(func(_ []byte, v []byte) error {
			var bm Bookmark
			if err := json.Unmarshal(v, &bm); err != nil {
				return nil
			}
			bookmarks = append(bookmarks, &bm)
			return nil
		})
	})
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].SavedAt.After(bookmarks[j].SavedAt)
	})
	return bookmarks, err
}

func (s *Store) SaveSession(session *Session) error {
	if session == nil || session.Token == "" {
		return fmt.Errorf("session requires a token")
	}
	if session.SavedAt.IsZero() {
		session.SavedAt = s.now()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(session)
		if err != nil {
			return err
		}
		return tx.Bucket(sessionBucket).Put(sessionKey, data)
	})
}

func (s *Store) GetSession() (*Session, error) {
	var session Session
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(sessionBucket).Get(sessionKey)
		if data == nil {
			return ErrNoSession
		}
		return json.Unmarshal(data, &session)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) ClearSession() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(sessionKey)
	})
}
