package database

import (
	"context"
	"fmt"
	"time"

	"echosorter/config"

	"github.com/valkey-io/valkey-go"
)

// Valkey database index organization. Each index gives logical separation for
// a cache category.
const (
	// GENERAL_CACHE_INDEX (DB 0) - general purpose caching
	GENERAL_CACHE_INDEX = iota

	// OAUTH_STATE_CACHE_INDEX (DB 1) - short-lived authorization state nonces,
	// mapping state -> user hint while the user is away at the consent page
	OAUTH_STATE_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.Error("failed to initialize cache database: address or port is empty")
	}

	var cacheDB Cache

	var err error
	cacheDB.General, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    GENERAL_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create general valkey client", err)
	}

	cacheDB.OAuthState, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    OAUTH_STATE_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create oauth state valkey client", err)
	}

	s.Cache = cacheDB
	return nil
}

// SetOAuthState stores an authorization state nonce with its user hint.
func (s *DB) SetOAuthState(ctx context.Context, state, userHint string, ttl time.Duration) error {
	client := s.Cache.OAuthState
	cmd := client.B().Set().Key(state).Value(userHint).Ex(ttl).Build()
	if err := client.Do(ctx, cmd).Error(); err != nil {
		return s.log.Err("failed to store oauth state", err)
	}
	return nil
}

// TakeOAuthState fetches and deletes an authorization state nonce. A state is
// single use; replaying a callback must fail.
func (s *DB) TakeOAuthState(ctx context.Context, state string) (string, bool, error) {
	client := s.Cache.OAuthState

	resp := client.Do(ctx, client.B().Getdel().Key(state).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, s.log.Err("failed to fetch oauth state", err)
	}

	userHint, err := resp.ToString()
	if err != nil {
		return "", false, s.log.Err("failed to decode oauth state", err)
	}

	return userHint, true, nil
}
