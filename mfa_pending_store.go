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

const mfaPendingRecordVersion1 = 1

var (
	errMFAPendingNotFound = errors.New("mfa pending record not found")
	errMFAPendingExpired  = errors.New("mfa pending record expired")
	errMFAPendingBackend  = errors.New("mfa pending backend unavailable")
)

// mfaPendingRecord tracks a login between password verification and second
// factor verification, keyed by the access token minted at the first step.
// The provider-issued refresh token rides along so the full session can be
// materialized on confirmation without a second mint.
type mfaPendingRecord struct {
	UserID       string
	FactorID     string
	RefreshToken string
	ExpiresAt    int64
	Attempts     uint16
}

type mfaPendingStore struct {
	redis  redis.UniversalClient
	prefix string
}

func newMFAPendingStore(redisClient redis.UniversalClient, prefix string) *mfaPendingStore {
	if prefix == "" {
		prefix = "mfp"
	}
	return &mfaPendingStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *mfaPendingStore) key(accessToken string) string {
	return s.prefix + ":" + internal.HashTokenKey(accessToken)
}

func (s *mfaPendingStore) Save(
	ctx context.Context,
	accessToken string,
	record *mfaPendingRecord,
	ttl time.Duration,
) error {
	encoded, err := encodeMFAPendingRecord(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(accessToken), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errMFAPendingBackend, err)
	}
	return nil
}

func (s *mfaPendingStore) Get(ctx context.Context, accessToken string) (*mfaPendingRecord, error) {
	data, err := s.redis.Get(ctx, s.key(accessToken)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errMFAPendingNotFound
		}
		return nil, fmt.Errorf("%w: %v", errMFAPendingBackend, err)
	}

	record, err := decodeMFAPendingRecord(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > record.ExpiresAt {
		_, _ = s.redis.Del(ctx, s.key(accessToken)).Result()
		return nil, errMFAPendingExpired
	}
	return record, nil
}

// Delete consumes the pending record. The boolean result distinguishes a
// genuine consume from a replay: false means another caller got there first
// or the window lapsed.
func (s *mfaPendingStore) Delete(ctx context.Context, accessToken string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(accessToken)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", errMFAPendingBackend, err)
	}
	return n > 0, nil
}

// RecordFailure increments the attempt counter under a WATCH transaction so
// concurrent failures cannot race past maxAttempts. A failed verification
// leaves the record in place for retry within the original window; only the
// attempt cap deletes it early.
func (s *mfaPendingStore) RecordFailure(
	ctx context.Context,
	accessToken string,
	maxAttempts int,
) (bool, error) {
	const maxRetries = 4
	key := s.key(accessToken)

	for i := 0; i < maxRetries; i++ {
		var exceeded bool
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeMFAPendingRecord(data)
			if err != nil {
				return err
			}
			if time.Now().Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return errMFAPendingExpired
			}

			record.Attempts++
			if int(record.Attempts) >= maxAttempts {
				exceeded = true
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return nil
			}

			ttl := time.Until(time.Unix(record.ExpiresAt, 0))
			if ttl <= 0 {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return errMFAPendingExpired
			}

			updated, err := encodeMFAPendingRecord(record)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return false, errMFAPendingNotFound
			}
			if errors.Is(err, errMFAPendingExpired) {
				return false, err
			}
			return false, fmt.Errorf("%w: %v", errMFAPendingBackend, err)
		}
		return exceeded, nil
	}

	return false, errMFAPendingNotFound
}

func encodeMFAPendingRecord(record *mfaPendingRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(mfaPendingRecordVersion1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.UserID) > 65535 || len(record.FactorID) > 65535 || len(record.RefreshToken) > 65535 {
		return nil, errors.New("mfa pending field length exceeded")
	}
	for _, field := range []string{record.UserID, record.FactorID, record.RefreshToken} {
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeMFAPendingRecord(data []byte) (*mfaPendingRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != mfaPendingRecordVersion1 {
		return nil, errors.New("invalid mfa pending record version")
	}

	record := &mfaPendingRecord{}
	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
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
	record.UserID = fields[0]
	record.FactorID = fields[1]
	record.RefreshToken = fields[2]

	return record, nil
}
