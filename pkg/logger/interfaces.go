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

package logger

import (
	"github.com/rs/zerolog"
)

// Logger is what checks and stores log through. Plugins keep stdout for the
// status line, so every implementation writes elsewhere.
type Logger interface {
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	Fatal() *zerolog.Event
	Panic() *zerolog.Event

	With() zerolog.Context
	WithComponent(component string) zerolog.Logger
	WithFields(fields map[string]interface{}) zerolog.Logger

	SetLevel(level zerolog.Level)
	SetDebug(debug bool)
}

// Wrap turns a derived zerolog.Logger, such as the result of WithComponent,
// back into a Logger.
func Wrap(z zerolog.Logger) Logger {
	return &zerologLogger{logger: z}
}

// NewTestLogger returns a Logger that drops everything.
func NewTestLogger() Logger {
	return Wrap(zerolog.Nop())
}
