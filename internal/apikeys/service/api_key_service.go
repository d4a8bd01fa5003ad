/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
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

package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/revops/revenue-sync-service/internal/apikeys/model"
	"github.com/revops/revenue-sync-service/internal/apikeys/store"
	"github.com/revops/revenue-sync-service/internal/system/cache"
	"github.com/revops/revenue-sync-service/internal/system/errors"
)

type APIKeyServiceInterface interface {
	CreateAPIKey(request model.CreateAPIKeyRequest) (*model.CreateAPIKeyResponse, error)
	ListAPIKeys() ([]model.APIKey, error)
	RevokeAPIKey(keyId string) error
	ValidateKey(rawKey string) (bool, error)
}

// APIKeyService manages scheduler and dashboard credentials. Validation
// results are cached briefly so the hot request path does not hit the
// database on every call.
type APIKeyService struct {
	validated *cache.Cache
}

var keyCache = cache.NewCache(time.Minute)

// GetAPIKeyService creates a new instance of APIKeyService.
func GetAPIKeyService() APIKeyServiceInterface {

	return &APIKeyService{validated: keyCache}
}

func (aks *APIKeyService) CreateAPIKey(request model.CreateAPIKeyRequest) (*model.CreateAPIKeyResponse, error) {

	if request.Name == "" {
		return nil, errors.NewClientError(errors.ErrBadRequest, http.StatusBadRequest)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, errors.NewServerError(errors.ADD_API_KEY, err)
	}
	plaintext := "rss_" + hex.EncodeToString(raw)

	key := model.APIKey{
		KeyId:     uuid.New().String(),
		Name:      request.Name,
		KeyHash:   hashKey(plaintext),
		CreatedAt: time.Now().UTC(),
	}
	if err := store.InsertAPIKey(key); err != nil {
		return nil, err
	}
	return &model.CreateAPIKeyResponse{
		KeyId:     key.KeyId,
		Name:      key.Name,
		APIKey:    plaintext,
		CreatedAt: key.CreatedAt,
	}, nil
}

func (aks *APIKeyService) ListAPIKeys() ([]model.APIKey, error) {

	return store.ListAPIKeys()
}

func (aks *APIKeyService) RevokeAPIKey(keyId string) error {

	keyHash, err := store.RevokeAPIKey(keyId)
	if err != nil {
		return err
	}
	if keyHash == "" {
		return errors.NewClientError(errors.ErrBadRequest, http.StatusNotFound)
	}
	// Revocation must not wait out the validation cache.
	aks.validated.Delete(keyHash)
	return nil
}

func (aks *APIKeyService) ValidateKey(rawKey string) (bool, error) {

	if rawKey == "" {
		return false, nil
	}
	keyHash := hashKey(rawKey)
	if _, ok := aks.validated.Get(keyHash); ok {
		return true, nil
	}

	key, err := store.FindByHash(keyHash)
	if err != nil {
		return false, err
	}
	if key == nil {
		return false, nil
	}
	aks.validated.Set(keyHash, key.KeyId)
	return true, nil
}

func hashKey(rawKey string) string {

	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}
