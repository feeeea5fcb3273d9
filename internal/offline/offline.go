// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"sync"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNonLocalhost is returned for a non-loopback backend URL in offline mode.
	ErrNonLocalhost = errors.New("offline mode: only localhost connections are allowed")

	// ErrCloudBlocked is returned when a cloud backend is requested in offline mode.
	ErrCloudBlocked = errors.New("offline mode: cloud models are disabled")

	// ErrInvalidURLScheme is returned for anything but http and https.
	ErrInvalidURLScheme = errors.New("only http and https backend URLs are allowed")
)

// =============================================================================
// MODE
// =============================================================================

var (
	offlineMode      bool
	offlineModeMutex sync.RWMutex
)

// SetOfflineMode enables or disables offline mode for the process.
func SetOfflineMode(enabled bool) {
	offlineModeMutex.Lock()
	defer offlineModeMutex.Unlock()
	offlineMode = enabled
}

// IsOfflineMode reports whether offline mode is enabled.
func IsOfflineMode() bool {
	offlineModeMutex.RLock()
	defer offlineModeMutex.RUnlock()
	return offlineMode
}

// =============================================================================
// CHECKS
// =============================================================================

// IsLocalhost reports whether host (optionally with a port) is a loopback
// name or address.
func IsLocalhost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.Trim(host, "[]"))

	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// ValidateOllamaURL checks the scheme of a backend URL and, in offline mode,
// that it points at this machine.
func ValidateOllamaURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURLScheme
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrInvalidURLScheme
	}

	if IsOfflineMode() && !IsLocalhost(parsed.Hostname()) {
		return ErrNonLocalhost
	}
	return nil
}

// CheckCloudAllowed returns ErrCloudBlocked in offline mode.
func CheckCloudAllowed() error {
	if IsOfflineMode() {
		return ErrCloudBlocked
	}
	return nil
}

// FilterModels returns the catalog entries usable in the current mode:
// everything when online, only local models when offline.
func FilterModels(models []model.Descriptor) []model.Descriptor {
	if !IsOfflineMode() {
		return models
	}
	out := make([]model.Descriptor, 0, len(models))
	for _, d := range models {
		if d.IsLocal() {
			out = append(out, d)
		}
	}
	return out
}

// StatusBadge returns a short marker for the status line.
func StatusBadge() string {
	if IsOfflineMode() {
		return "[OFFLINE]"
	}
	return ""
}
