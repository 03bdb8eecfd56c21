package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/routerbot/routerbot/pkg/util"
)

const table = "ROUTER"

// StatusUnknown is stored for profiles the monitor has not probed yet.
const StatusUnknown = "unknown"

// Store persists profiles as Redis hashes keyed "ROUTER|<guild>|<name>".
type Store struct {
	client *redis.Client
}

// NewStore wraps an existing client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &Store{client: client}, nil
}

// Close closes the connection
func (s *Store) Close() error {
	return s.client.Close()
}

func guildKey(guild string) string {
	if guild == "" {
		return GlobalGuild
	}
	return guild
}

func redisKey(guild, name string) string {
	return fmt.Sprintf("%s|%s|%s", table, guildKey(guild), name)
}

// Upsert creates or replaces a profile and resets its monitor status.
// created_at is set only on insert.
func (s *Store) Upsert(ctx context.Context, p Profile) (created bool, err error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	p.GuildID = guildKey(p.GuildID)
	if p.Status == "" {
		p.Status = StatusUnknown
	}
	now := time.Now()
	p.UpdatedAt = now
	key := redisKey(p.GuildID, p.Name)

	created, err = s.client.HSetNX(ctx, key, "created_at", formatTime(now)).Result()
	if err != nil {
		return false, fmt.Errorf("storing router %s: %w", p.Name, err)
	}

	fields := p.fields()
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, args...)
	if p.FailureReason == "" {
		pipe.HDel(ctx, key, "failure_reason")
	}
	if p.LastChecked.IsZero() {
		pipe.HDel(ctx, key, "last_checked")
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("storing router %s: %w", p.Name, err)
	}
	return created, nil
}

// Get reads one profile. A missing profile yields an error wrapping
// util.ErrNotFound.
func (s *Store) Get(ctx context.Context, guild, name string) (*Profile, error) {
	vals, err := s.client.HGetAll(ctx, redisKey(guild, name)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading router %s: %w", name, err)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("router %q: %w", name, util.ErrNotFound)
	}
	p := profileFromFields(vals)
	return &p, nil
}

// List returns the profiles of one guild sorted by name.
func (s *Store) List(ctx context.Context, guild string) ([]Profile, error) {
	return s.load(ctx, fmt.Sprintf("%s|%s|*", table, guildKey(guild)))
}

// All returns every profile sorted by guild, then name.
func (s *Store) All(ctx context.Context) ([]Profile, error) {
	return s.load(ctx, table+"|*")
}

func (s *Store) load(ctx context.Context, pattern string) ([]Profile, error) {
	keys, err := scanKeys(ctx, s.client, pattern, 100)
	if err != nil {
		return nil, fmt.Errorf("listing routers: %w", err)
	}

	profiles := make([]Profile, 0, len(keys))
	for _, key := range keys {
		vals, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		if len(vals) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		profiles = append(profiles, profileFromFields(vals))
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].GuildID != profiles[j].GuildID {
			return profiles[i].GuildID < profiles[j].GuildID
		}
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

// Delete removes a profile and reports whether it existed.
func (s *Store) Delete(ctx context.Context, guild, name string) (bool, error) {
	n, err := s.client.Del(ctx, redisKey(guild, name)).Result()
	if err != nil {
		return false, fmt.Errorf("deleting router %s: %w", name, err)
	}
	return n > 0, nil
}

// SetStatus records a probe result. Profiles deleted since the probe
// started are left deleted.
func (s *Store) SetStatus(ctx context.Context, guild, name, status, reason string, when time.Time) error {
	key := redisKey(guild, name)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("router %q: %w", name, util.ErrNotFound)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "status", status, "last_checked", formatTime(when))
	if reason == "" {
		pipe.HDel(ctx, key, "failure_reason")
	} else {
		pipe.HSet(ctx, key, "failure_reason", reason)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("updating status of %s: %w", name, err)
	}
	return nil
}

// scanKeys iterates keys matching pattern with cursor-based SCAN.
func scanKeys(ctx context.Context, client *redis.Client, pattern string, countHint int64) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		batch, next, err := client.Scan(ctx, cursor, pattern, countHint).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
