package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/store"
)

// DefaultFetchTimeout bounds a single store request made by a session.
const DefaultFetchTimeout = 30 * time.Second

// Service is the core navigation service
type Service struct {
	Config *Config
	Logger *logrus.Entry
	Store  store.Store
	cache  *store.Cache
}

// Config holds service configuration
type Config struct {
	StoreDir     string
	RootID       string
	DataDir      string
	Cache        bool
	FetchTimeout time.Duration
}

// New creates a service over the directory store configured in config,
// optionally fronted by the sqlite cache in DataDir.
func New(config *Config, logger *logrus.Entry) (*Service, error) {
	if config.StoreDir == "" {
		return nil, fmt.Errorf("no store directory configured")
	}
	fsStore, err := store.NewFS(config.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	svc := NewWithStore(config, fsStore, logger)
	if config.Cache {
		cache, err := store.NewCache(filepath.Join(config.DataDir, "cache.db"), fsStore, svc.Logger)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		svc.cache = cache
		svc.Store = cache
	}
	return svc, nil
}

// NewWithStore creates a service over an existing store.
func NewWithStore(config *Config, st store.Store, logger *logrus.Entry) *Service {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	if config.RootID == "" {
		config.RootID = models.RootID
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}
	return &Service{
		Config: config,
		Logger: logger,
		Store:  st,
	}
}

// NewSession starts a navigation session. Call Open on it before use.
func (s *Service) NewSession() *Session {
	return newSession(s.Store, s.Logger.WithField("sub-component", "session"), s.Config.FetchTimeout)
}

// Cache returns the sqlite cache, or nil when caching is disabled.
func (s *Service) Cache() *store.Cache {
	return s.cache
}

// Close releases the cache database if one is open.
func (s *Service) Close() error {
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}

// OpenSession creates a session and opens it on the configured root.
func (s *Service) OpenSession(ctx context.Context) (*Session, error) {
	session := s.NewSession()
	if err := session.Open(ctx, s.Config.RootID); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}
