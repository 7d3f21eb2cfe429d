package goSession

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MrEthical07/goSession/internal"
	"github.com/redis/go-redis/v9"
)

const identityRecordVersion1 = 1

var (
	errIdentityNotCached    = errors.New("identity not cached")
	errIdentityCacheBackend = errors.New("identity cache backend unavailable")
)

// identityCacheStore maps a bearer token (by hash) to the minimal identity
// record the resolver caches between provider verifications. Entries expire
// with the Redis TTL; explicit deletion happens on logout and revocation.
type identityCacheStore struct {
	redis  redis.UniversalClient
	prefix string
}

func newIdentityCacheStore(redisClient redis.UniversalClient, prefix string) *identityCacheStore {
	if prefix == "" {
		prefix = "sid"
	}
	return &identityCacheStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *identityCacheStore) key(token string) string {
	return s.prefix + ":" + internal.HashTokenKey(token)
}

func (s *identityCacheStore) Save(ctx context.Context, token string, identity *Identity, ttl time.Duration) error {
	encoded, err := encodeIdentityRecord(identity)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(token), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errIdentityCacheBackend, err)
	}
	return nil
}

func (s *identityCacheStore) Get(ctx context.Context, token string) (*Identity, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errIdentityNotCached
		}
		return nil, fmt.Errorf("%w: %v", errIdentityCacheBackend, err)
	}

	return decodeIdentityRecord(data)
}

// Delete removes the cache entry for the token. Deleting an absent entry is
// not an error.
func (s *identityCacheStore) Delete(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", errIdentityCacheBackend, err)
	}
	return n > 0, nil
}

func encodeIdentityRecord(identity *Identity) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(identityRecordVersion1)

	if len(identity.UserID) > 65535 || len(identity.Email) > 65535 || len(identity.Role) > 65535 {
		return nil, errors.New("identity field length exceeded")
	}
	for _, field := range []string{identity.UserID, identity.Email, identity.Role} {
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeIdentityRecord(data []byte) (*Identity, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != identityRecordVersion1 {
		return nil, errors.New("invalid identity record version")
	}

	fields := make([]string, 3)
	for i := range fields {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		fields[i] = string(raw)
	}

	return &Identity{
		UserID: fields[0],
		Email:  fields[1],
		Role:   fields[2],
	}, nil
}
