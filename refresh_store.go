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

const refreshRecordVersion1 = 1

var (
	errRefreshRecordNotFound = errors.New("refresh record not found")
	errRefreshStoreBackend   = errors.New("refresh store backend unavailable")
)

// refreshRecord maps a refresh-token value to its owning user. At most one
// active record exists per token value; rotation consumes the old record
// before a new one is written.
type refreshRecord struct {
	UserID    string
	IssuedAt  int64
	ExpiresAt int64
}

type refreshStore struct {
	redis  redis.UniversalClient
	prefix string
}

func newRefreshStore(redisClient redis.UniversalClient, prefix string) *refreshStore {
	if prefix == "" {
		prefix = "rfr"
	}
	return &refreshStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *refreshStore) key(token string) string {
	return s.prefix + ":" + internal.HashTokenKey(token)
}

func (s *refreshStore) Save(ctx context.Context, token string, record *refreshRecord, ttl time.Duration) error {
	encoded, err := encodeRefreshRecord(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(token), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRefreshStoreBackend, err)
	}
	return nil
}

// Consume atomically reads and deletes the record for the token. GETDEL
// makes consumption a single Redis operation, so a token value can rotate
// at most once regardless of concurrent refresh calls.
func (s *refreshStore) Consume(ctx context.Context, token string) (*refreshRecord, error) {
	data, err := s.redis.GetDel(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errRefreshRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", errRefreshStoreBackend, err)
	}

	record, err := decodeRefreshRecord(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > record.ExpiresAt {
		return nil, errRefreshRecordNotFound
	}
	return record, nil
}

// Peek reads the record without consuming it. Used by revocation audit and
// tests; rotation must go through Consume.
func (s *refreshStore) Peek(ctx context.Context, token string) (*refreshRecord, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errRefreshRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", errRefreshStoreBackend, err)
	}
	return decodeRefreshRecord(data)
}

// Delete revokes the record unconditionally. Revoking an absent record is
// not an error.
func (s *refreshStore) Delete(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", errRefreshStoreBackend, err)
	}
	return n > 0, nil
}

func encodeRefreshRecord(record *refreshRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(refreshRecordVersion1)

	if err := binary.Write(&buf, binary.BigEndian, record.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.UserID) > 65535 {
		return nil, errors.New("refresh record user id length exceeded")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.UserID))); err != nil {
		return nil, err
	}
	buf.WriteString(record.UserID)

	return buf.Bytes(), nil
}

func decodeRefreshRecord(data []byte) (*refreshRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != refreshRecordVersion1 {
		return nil, errors.New("invalid refresh record version")
	}

	record := &refreshRecord{}
	if err := binary.Read(reader, binary.BigEndian, &record.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var userLen uint16
	if err := binary.Read(reader, binary.BigEndian, &userLen); err != nil {
		return nil, err
	}
	user := make([]byte, userLen)
	if _, err := io.ReadFull(reader, user); err != nil {
		return nil, err
	}
	record.UserID = string(user)

	return record, nil
}
