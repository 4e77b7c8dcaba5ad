// Package pluginconfig loads config.yml from the data folder: the game types
// on offer, world naming, file charset and reply overrides.
package pluginconfig

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pixil98/go-craftgames/internal/document"
	"github.com/spf13/viper"
	"golang.org/x/text/encoding"
)

// FileName is the name of the plugin configuration inside the data folder.
const FileName = "config.yml"

//go:embed config.yml
var defaultConfig []byte

type Config struct {
	dataDir string
	path    string

	mu sync.RWMutex
	v  *viper.Viper
}

// Load reads config.yml from dataDir, writing the default file first when
// there is none.
func Load(dataDir string) (*Config, error) {
	err := os.MkdirAll(dataDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("creating data folder: %w", err)
	}

	path := filepath.Join(dataDir, FileName)
	err = writeDefault(path)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	err = v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &Config{
		dataDir: dataDir,
		path:    path,
		v:       v,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("file-encoding", "UTF-8")
	v.SetDefault("install-sample", true)
	v.SetDefault("worlds.directory-label", "craftgames")
}

func writeDefault(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	_, err = f.Write(defaultConfig)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// DataDir is the folder holding config.yml, layouts and scripts.
func (c *Config) DataDir() string {
	return c.dataDir
}

func (c *Config) Path() string {
	return c.path
}

// LayoutPath returns the layout file configured for game type name. Game
// names are matched case-insensitively.
func (c *Config) LayoutPath(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := "games." + name + ".layout"
	if strings.Contains(name, ".") || !c.v.IsSet(key) {
		return "", false
	}

	p := c.v.GetString(key)
	return p, p != ""
}

// GameNames lists the configured game types, sorted.
func (c *Config) GameNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for name := range c.v.GetStringMap("games") {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *Config) DirectoryLabel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.v.GetString("worlds.directory-label")
}

// Charset resolves file-encoding.
func (c *Config) Charset() (encoding.Encoding, error) {
	c.mu.RLock()
	name := c.v.GetString("file-encoding")
	c.mu.RUnlock()

	return document.Charset(name)
}

func (c *Config) InstallSample() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.v.GetBool("install-sample")
}

// MarkSampleInstalled turns install-sample off and saves config.yml.
func (c *Config) MarkSampleInstalled() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.v.Set("install-sample", false)
	err := c.v.WriteConfig()
	if err != nil {
		return fmt.Errorf("saving %s: %w", c.path, err)
	}
	return nil
}

// Messages returns the reply overrides keyed by message name.
func (c *Config) Messages() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.v.GetStringMapString("messages")
}
