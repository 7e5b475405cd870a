package discord

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// commandCache remembers the definition hash of every slash command synced to
// a guild, next to the datastore file.
type commandCache struct {
	dir string
}

func newCommandCache(storagePath string) *commandCache {
	return &commandCache{dir: filepath.Join(filepath.Dir(storagePath), "commands")}
}

func (c *commandCache) path(guildID string) string {
	return filepath.Join(c.dir, guildID+".json")
}

// load returns the cached hashes for guildID; a missing or unreadable cache is
// empty.
func (c *commandCache) load(guildID string) map[string]string {
	data := make(map[string]string)
	file, err := os.ReadFile(c.path(guildID))
	if err == nil {
		_ = json.Unmarshal(file, &data)
	}
	return data
}

func (c *commandCache) save(guildID string, hashes map[string]string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create command cache dir: %w", err)
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(guildID), data, 0644)
}
