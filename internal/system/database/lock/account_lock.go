/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package lock

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/wso2/ads-automation-service/internal/system/database/provider"
	"github.com/wso2/ads-automation-service/internal/system/errors"
	"github.com/wso2/ads-automation-service/internal/system/log"
)

// DistributedLock serializes work on a shared key across service instances.
// Rule synchronization acquires one per ad account so that two overlapping
// sync invocations cannot interleave their reconcile decisions.
type DistributedLock interface {
	Acquire(key string) (bool, error)
	Release(key string) error
}

// PostgresLock implements DistributedLock using PostgreSQL advisory locks.
// Advisory locks are session scoped, so every acquired key pins a dedicated
// connection that stays open until the matching Release.
type PostgresLock struct {
	mu       sync.Mutex
	sessions map[string]*lockSession
}

// lockSession is the pinned connection holding one advisory lock, together
// with the pool it was drawn from.
type lockSession struct {
	db   *sql.DB
	conn *sql.Conn
}

func (s *lockSession) close() {
	_ = s.conn.Close()
	_ = s.db.Close()
}

func NewPostgresLock() *PostgresLock {
	return &PostgresLock{sessions: make(map[string]*lockSession)}
}

// PostgreSQL advisory locks take a bigint key, so string keys are hashed.
func (l *PostgresLock) generateLockKey(key string) (int64, error) {

	logger := log.GetLogger()
	h := fnv.New64a()
	_, err := h.Write([]byte(key))
	if err != nil {
		errorMsg := fmt.Sprintf("failed to hash lock key '%s'", key)
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_KEY_GEN.Code,
			Message:     errors.LOCK_KEY_GEN.Message,
			Description: errorMsg,
		}, err)
		return 0, serverError
	}
	return int64(h.Sum64()), nil
}

func (l *PostgresLock) Acquire(key string) (bool, error) {

	logger := log.GetLogger()
	lockID, err := l.generateLockKey(key)
	if err != nil {
		return false, err
	}
	logger.Debug(fmt.Sprintf("Generated lock id: %d for key: %s", lockID, key))

	db, err := provider.NewDBProvider().GetDB()
	if err != nil {
		errorMsg := "Failed during DB connection creation for advisory lock acquiring."
		logger.Error(errorMsg, log.Error(err))
		return false, errors.NewServerError(errors.ErrorMessage{
			Code:        errors.DB_CLIENT_INIT.Code,
			Message:     errors.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		errorMsg := "Failed to pin a session for advisory lock acquiring."
		logger.Error(errorMsg, log.Error(err))
		return false, errors.NewServerError(errors.ErrorMessage{
			Code:        errors.DB_CLIENT_INIT.Code,
			Message:     errors.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
	}

	var acquired bool
	err = conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired)
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		if err == sql.ErrNoRows {
			errorMsg := fmt.Sprintf("pg_try_advisory_lock returned no result for lock id %d", lockID)
			logger.Error(errorMsg)
			return false, errors.NewServerError(errors.ErrorMessage{
				Code:        errors.LOCK_RESULT_INVALID.Code,
				Message:     errors.LOCK_RESULT_INVALID.Message,
				Description: errorMsg,
			}, err)
		}
		errorMsg := "Failed to execute pg_try_advisory_lock"
		logger.Error(errorMsg, log.Error(err))
		return false, errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_ACQUIRE.Code,
			Message:     errors.LOCK_ACQUIRE.Message,
			Description: errorMsg,
		}, err)
	}

	if !acquired {
		_ = conn.Close()
		_ = db.Close()
		return false, nil
	}

	l.mu.Lock()
	l.sessions[key] = &lockSession{db: db, conn: conn}
	l.mu.Unlock()
	return true, nil
}

func (l *PostgresLock) Release(key string) error {

	logger := log.GetLogger()

	l.mu.Lock()
	session, held := l.sessions[key]
	delete(l.sessions, key)
	l.mu.Unlock()
	if !held {
		errorMsg := fmt.Sprintf("Advisory lock for key %s is not held by this instance.", key)
		logger.Error(errorMsg)
		return errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_RELEASE.Code,
			Message:     errors.LOCK_RELEASE.Message,
			Description: errorMsg,
		}, nil)
	}
	defer session.close()

	lockID, err := l.generateLockKey(key)
	if err != nil {
		return err
	}

	var released bool
	err = session.conn.QueryRowContext(context.Background(),
		"SELECT pg_advisory_unlock($1)", lockID).Scan(&released)
	if err != nil {
		errorMsg := "pg_advisory_unlock failed"
		logger.Error(errorMsg, log.Error(err))
		return errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_RELEASE.Code,
			Message:     errors.LOCK_RELEASE.Message,
			Description: errorMsg,
		}, err)
	}
	if !released {
		errorMsg := fmt.Sprintf("Advisory lock for key %s was not held by this session.", key)
		logger.Error(errorMsg)
		return errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_RELEASE.Code,
			Message:     errors.LOCK_RELEASE.Message,
			Description: errorMsg,
		}, nil)
	}
	logger.Debug(fmt.Sprintf("Advisory lock released for lock id: %d", lockID))
	return nil
}
