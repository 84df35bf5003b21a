package store

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/avinab11/velagio-qr-studio/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const (
	codeIDLength    = 6
	editTokenLength = 32
	maxAllocRetries = 5
	charset         = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	codeKeyPrefix = "code:"
	scanKeyPrefix = "scans:"
	tokenIndexKey = "token_index" // Redis hash mapping edit_token -> code id
)

var (
	ErrNotFound       = errors.New("dynamic code not found")
	ErrTokenMismatch  = errors.New("edit token does not match")
	ErrAllocExhausted = errors.New("failed to allocate unique code id after maximum retries")
)

// CodeStore persists dynamic codes and their scan logs in Redis.
//
// Each code is a hash at code:<id>; scans are JSON entries on the
// scans:<id> list, most recent first, trimmed to scanLogMax.
type CodeStore struct {
	redis      *redis.Client
	scanLogMax int64
}

func New(redisClient *redis.Client, scanLogMax int) *CodeStore {
	if scanLogMax <= 0 {
		scanLogMax = 1000
	}
	return &CodeStore{
		redis:      redisClient,
		scanLogMax: int64(scanLogMax),
	}
}

// randomString generates a cryptographically secure random string
func randomString(length int) (string, error) {
	result := make([]byte, length)
	for i := range result {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}

// CreateCode allocates an id and edit token and inserts the record.
// Identifier assignment is treated as an allocation: the HSETNX claim
// detects a collision with an existing row and regenerates.
func (s *CodeStore) CreateCode(ctx context.Context, targetURL string) (model.DynamicCode, error) {
	token, err := randomString(editTokenLength)
	if err != nil {
		return model.DynamicCode{}, err
	}

	for attempt := 0; attempt < maxAllocRetries; attempt++ {
		id, err := randomString(codeIDLength)
		if err != nil {
			return model.DynamicCode{}, err
		}

		claimed, err := s.redis.HSetNX(ctx, codeKeyPrefix+id, "edit_token", token).Result()
		if err != nil {
			return model.DynamicCode{}, err
		}
		if !claimed {
			log.Warn().
				Str("code_id", id).
				Int("attempt", attempt+1).
				Msg("Code id collision detected, retrying")
			continue
		}

		code := model.DynamicCode{
			ID:        id,
			TargetURL: targetURL,
			EditToken: token,
			IsBlocked: false,
			ScanCount: 0,
			CreatedAt: time.Now().UTC(),
		}

		fields := map[string]interface{}{
			"target_url": code.TargetURL,
			"is_blocked": "0",
			"scan_count": "0",
			"created_at": code.CreatedAt.Format(time.RFC3339Nano),
		}
		if err := s.redis.HSet(ctx, codeKeyPrefix+id, fields).Err(); err != nil {
			// Release the claim so the id does not stay allocated as a stub
			// hash holding only the token field.
			if delErr := s.redis.Del(ctx, codeKeyPrefix+id).Err(); delErr != nil {
				log.Error().Err(delErr).Str("code_id", id).Msg("Failed to release claimed code id")
			}
			return model.DynamicCode{}, err
		}

		if err := s.redis.HSet(ctx, tokenIndexKey, token, id).Err(); err != nil {
			// The record itself is stored; the index only serves legacy
			// token-only ownership entries.
			log.Error().Err(err).Str("code_id", id).Msg("Failed to add code to token index")
		}

		return code, nil
	}

	return model.DynamicCode{}, ErrAllocExhausted
}

// GetCode fetches a code by id. Returns ErrNotFound when the row is absent;
// any other error means the store itself failed.
func (s *CodeStore) GetCode(ctx context.Context, id string) (model.DynamicCode, error) {
	fields, err := s.redis.HGetAll(ctx, codeKeyPrefix+id).Result()
	if err != nil {
		return model.DynamicCode{}, err
	}
	if len(fields) == 0 {
		return model.DynamicCode{}, ErrNotFound
	}
	return parseCode(id, fields), nil
}

func parseCode(id string, fields map[string]string) model.DynamicCode {
	code := model.DynamicCode{
		ID:        id,
		TargetURL: fields["target_url"],
		EditToken: fields["edit_token"],
		IsBlocked: fields["is_blocked"] == "1",
	}
	if n, err := strconv.ParseInt(fields["scan_count"], 10, 64); err == nil {
		code.ScanCount = n
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		code.CreatedAt = t
	}
	return code
}

// authorize verifies the presented edit token against the stored one in
// constant time to avoid a timing side-channel on the only secret we have.
func (s *CodeStore) authorize(ctx context.Context, id, token string) (model.DynamicCode, error) {
	code, err := s.GetCode(ctx, id)
	if err != nil {
		return model.DynamicCode{}, err
	}
	if subtle.ConstantTimeCompare([]byte(code.EditToken), []byte(token)) != 1 {
		return model.DynamicCode{}, ErrTokenMismatch
	}
	return code, nil
}

// UpdateTarget changes the redirect destination. Both id and edit token must
// match an existing row.
func (s *CodeStore) UpdateTarget(ctx context.Context, id, token, newTargetURL string) (model.DynamicCode, error) {
	code, err := s.authorize(ctx, id, token)
	if err != nil {
		return model.DynamicCode{}, err
	}
	if err := s.redis.HSet(ctx, codeKeyPrefix+id, "target_url", newTargetURL).Err(); err != nil {
		return model.DynamicCode{}, err
	}
	code.TargetURL = newTargetURL
	return code, nil
}

// SetBlocked sets the owner kill switch to an explicit desired state rather
// than flipping whatever the client last saw.
func (s *CodeStore) SetBlocked(ctx context.Context, id, token string, blocked bool) (model.DynamicCode, error) {
	code, err := s.authorize(ctx, id, token)
	if err != nil {
		return model.DynamicCode{}, err
	}
	value := "0"
	if blocked {
		value = "1"
	}
	if err := s.redis.HSet(ctx, codeKeyPrefix+id, "is_blocked", value).Err(); err != nil {
		return model.DynamicCode{}, err
	}
	code.IsBlocked = blocked
	return code, nil
}

// DeleteCode removes the record, its scan log, and its token index entry.
func (s *CodeStore) DeleteCode(ctx context.Context, id, token string) error {
	code, err := s.authorize(ctx, id, token)
	if err != nil {
		return err
	}
	if err := s.redis.Del(ctx, codeKeyPrefix+id, scanKeyPrefix+id).Err(); err != nil {
		return err
	}
	if err := s.redis.HDel(ctx, tokenIndexKey, code.EditToken).Err(); err != nil {
		log.Error().Err(err).Str("code_id", id).Msg("Failed to remove code from token index")
	}
	return nil
}

// IncrementScanCount atomically bumps the lifetime counter. HINCRBY closes
// the lost-update window a read-then-write counter would have under
// concurrent scans of the same code.
func (s *CodeStore) IncrementScanCount(ctx context.Context, id string) (int64, error) {
	return s.redis.HIncrBy(ctx, codeKeyPrefix+id, "scan_count", 1).Result()
}

// AppendScan logs one scan, most recent first, keeping the bounded window.
func (s *CodeStore) AppendScan(ctx context.Context, scan model.Scan) error {
	data, err := json.Marshal(scan)
	if err != nil {
		return err
	}
	key := scanKeyPrefix + scan.CodeID
	if err := s.redis.LPush(ctx, key, data).Err(); err != nil {
		return err
	}
	if err := s.redis.LTrim(ctx, key, 0, s.scanLogMax-1).Err(); err != nil {
		return err
	}
	return nil
}

// RecentScans returns up to limit scan rows, most recent first.
func (s *CodeStore) RecentScans(ctx context.Context, id string, limit int) ([]model.Scan, error) {
	if limit <= 0 || int64(limit) > s.scanLogMax {
		limit = int(s.scanLogMax)
	}
	rows, err := s.redis.LRange(ctx, scanKeyPrefix+id, 0, int64(limit-1)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	scans := make([]model.Scan, 0, len(rows))
	for _, row := range rows {
		var scan model.Scan
		if err := json.Unmarshal([]byte(row), &scan); err != nil {
			continue
		}
		scans = append(scans, scan)
	}
	return scans, nil
}

// GetCodes fetches the records for a set of ids, skipping unknown ones.
func (s *CodeStore) GetCodes(ctx context.Context, ids []string) ([]model.DynamicCode, error) {
	codes := make([]model.DynamicCode, 0, len(ids))
	for _, id := range ids {
		code, err := s.GetCode(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// GetByTokens resolves legacy token-only ownership entries through the token
// index, skipping tokens that no longer map to a record.
func (s *CodeStore) GetByTokens(ctx context.Context, tokens []string) ([]model.DynamicCode, error) {
	codes := make([]model.DynamicCode, 0, len(tokens))
	for _, token := range tokens {
		id, err := s.redis.HGet(ctx, tokenIndexKey, token).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		code, err := s.GetCode(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}
