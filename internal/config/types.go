package config

var (
	_ Provider = (*DefaultLoader)(nil)
	_ Modifier = (*Config)(nil)
)

// TransportStdio is the only transport currently implemented.
// The field exists so configs remain forward compatible.
const TransportStdio = "stdio"

type Loader interface {
	Load(path string) (Modifier, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

type Modifier interface {
	AddServer(entry ServerEntry) error
	RemoveServer(name string) error
	ListServers() []ServerEntry
	Server(name string) (ServerEntry, bool)
	SaveConfig() error
}

type DefaultLoader struct{}

// Config represents the .mcpherd.toml file structure.
type Config struct {
	Servers        []ServerEntry `toml:"servers"`
	configFilePath string        `toml:"-"`
}

// ServerEntry is the launch configuration of a single MCP server.
// Entries are immutable once loaded; edits go through the Modifier and are
// persisted back to the config file.
type ServerEntry struct {
	// Name is the unique identifier for the server, referenced by the user.
	// e.g. 'github-server'
	Name string `json:"name" toml:"name" yaml:"name"`

	// Transport selects the protocol channel. Only "stdio" is implemented.
	Transport string `json:"transport" toml:"transport" yaml:"transport"`

	// Command is the executable used to launch the server process.
	// e.g. 'npx'
	Command string `json:"command" toml:"command" yaml:"command"`

	// Args are passed to the command verbatim.
	Args []string `json:"args,omitempty" toml:"args,omitempty" yaml:"args,omitempty"`

	// Env contains environment variable overrides applied on top of the
	// host environment when the process is spawned.
	Env map[string]string `json:"env,omitempty" toml:"env,omitempty" yaml:"env,omitempty"`
}
