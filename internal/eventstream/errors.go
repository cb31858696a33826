// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package eventstream

import "errors"

// ErrBridgeDisabled is returned when bridge functionality is invoked in
// a binary compiled without the nats build tag.
var ErrBridgeDisabled = errors.New("event bridge not enabled (build with -tags=nats)")
