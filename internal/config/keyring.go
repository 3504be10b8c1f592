/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	keyringService       = "GoManuscript"
	keyringStorePassword = "store_password"
)

// TokenStore abstracts the OS keychain. Tests swap tokenStore for an in-memory fake.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) {
	v, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (osKeyring) Set(service, key, value string) error { return keyring.Set(service, key, value) }

func (osKeyring) Delete(service, key string) error {
	err := keyring.Delete(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

var tokenStore TokenStore = osKeyring{}

// ClearPassword removes the stored database password from the keychain.
func ClearPassword() error {
	return tokenStore.Delete(keyringService, keyringStorePassword)
}
