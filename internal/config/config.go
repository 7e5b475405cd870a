package config

import (
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultNodePort = 2333

// Node describes one audio node the bot can stream through.
type Node struct {
	Host     string `env:"HOST" envDefault:"127.0.0.1" toml:"host"`
	Port     int    `env:"PORT" envDefault:"2333" toml:"port"`
	Password string `env:"PASSWORD" envDefault:"youshallnotpass" toml:"password"`
	Region   string `env:"REGION" envDefault:"eu" toml:"region"`
	Name     string `env:"NAME" envDefault:"default-node" toml:"name"`
	Secure   bool   `env:"SECURE" toml:"secure"`
}

// Address returns host:port.
func (n Node) Address() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
}

type Config struct {
	DiscordToken          string   `env:"DISCORD_TOKEN,required,notEmpty"`
	CommandPrefix         string   `env:"COMMAND_PREFIX" envDefault:"!"`
	StoragePath           string   `env:"STORAGE_PATH" envDefault:"datastore.json"`
	DiscordGuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands     bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	MetricsAddr           string   `env:"METRICS_ADDR"`
	LogFile               string   `env:"LOG_FILE"`
	NodesFile             string   `env:"NODES_FILE"`

	Lavalink Node `envPrefix:"LAVALINK_"`

	// ExtraNodes are read from NodesFile.
	ExtraNodes []Node `env:"-"`
}

// Load reads an optional dotenv file into the process environment, then
// parses the environment into a Config.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("[INFO] No %s file found, falling back to system environment variables", envFile)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.NodesFile != "" {
		f, err := os.Open(cfg.NodesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open nodes file: %w", err)
		}
		defer f.Close()

		nodes, err := LoadNodes(f)
		if err != nil {
			return nil, err
		}
		cfg.ExtraNodes = nodes
	}

	return &cfg, nil
}

// LoadNodes decodes a TOML list of [[node]] tables.
func LoadNodes(r io.Reader) ([]Node, error) {
	var file struct {
		Node []Node `toml:"node"`
	}
	if _, err := toml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("couldn't decode nodes file: %w", err)
	}

	for i := range file.Node {
		n := &file.Node[i]
		if n.Host == "" {
			return nil, fmt.Errorf("node %d: host is required", i)
		}
		if n.Port == 0 {
			n.Port = defaultNodePort
		}
		if n.Name == "" {
			n.Name = fmt.Sprintf("node-%d", i+1)
		}
	}
	return file.Node, nil
}

// Nodes returns the primary node followed by any nodes from NodesFile.
func (c *Config) Nodes() []Node {
	return append([]Node{c.Lavalink}, c.ExtraNodes...)
}
