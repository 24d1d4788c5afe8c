// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// contentHash follows the same deterministic entity-ID hashing approach
// (pkg/ingestion/schema.go's GenerateFileID/GenerateFieldID): used here to
// detect a no-op re-registration without diffing full text on every
// cache_file call.
func contentHash(buf []byte) string {
	h := sha256.Sum256(buf)
	return hex.EncodeToString(h[:])
}
