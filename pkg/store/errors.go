/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package store

import "errors"

var (
	ErrEmptyKey       = errors.New("empty sample key")
	ErrInvalidRecord  = errors.New("invalid sample record")
	ErrUnknownBackend = errors.New("unknown store backend")
	ErrMissingURL     = errors.New("store backend url is required")
	ErrMissingDir     = errors.New("file store directory is required")
	// ErrCAParsingFailed is returned when the CA file holds no certificate.
	ErrCAParsingFailed = errors.New("failed to parse CA certificate")
)
