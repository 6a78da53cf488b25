package shared

// Playlist lock registry.
//
// Locked playlists are exempt from automated mutation unless the caller
// explicitly overrides. The registry lives inside Config and is persisted
// with it; these methods only touch the in-memory structure.

// IsPlaylistLocked reports whether the playlist id has a lock entry.
//
// A missing or empty locked_playlists list means no locks; this never errors.
func (c *Config) IsPlaylistLocked(id string) bool {
	for _, entry := range c.Locked {
		if entry.ID == id {
			return true
		}
	}
	return false
}

// LockPlaylist adds a lock entry for the playlist.
//
// Returns false without modification when the id is already locked. At most
// one entry exists per playlist id.
func (c *Config) LockPlaylist(id, name string) bool {
	if c.IsPlaylistLocked(id) {
		return false
	}
	c.Locked = append(c.Locked, LockEntry{ID: id, Name: name})
	return true
}

// UnlockPlaylist removes the lock entry for the playlist id.
//
// Returns false when no entry exists.
func (c *Config) UnlockPlaylist(id string) bool {
	for i, entry := range c.Locked {
		if entry.ID == id {
			c.Locked = append(c.Locked[:i], c.Locked[i+1:]...)
			return true
		}
	}
	return false
}
