package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds everything the API and the CLI need to reach the database and
// serve requests. The koanf tag is the YAML key and the env tag is the
// environment variable that overrides it.
type Config struct {
	DatabaseDriver   string `koanf:"database_driver" env:"DB_DRIVER" default:"mysql" validate:"required,oneof=mysql postgres sqlite"`
	DatabaseHost     string `koanf:"database_host" env:"DB_HOST" validate:"required_unless=DatabaseDriver sqlite"`
	DatabasePort     int    `koanf:"database_port" env:"DB_PORT" validate:"required_unless=DatabaseDriver sqlite"`
	DatabaseUser     string `koanf:"database_user" env:"DB_USER" validate:"required_unless=DatabaseDriver sqlite"`
	DatabasePassword string `koanf:"database_password" env:"DB_PASSWORD" validate:"required_unless=DatabaseDriver sqlite"`
	DatabaseName     string `koanf:"database_name" env:"DB_NAME" validate:"required"`
	DatabaseDebug    bool   `koanf:"database_debug" env:"DB_DEBUG"`
	ServerHost       string `koanf:"server_host" env:"SERVER_HOST"`
	ServerPort       int    `koanf:"server_port" env:"SERVER_PORT" default:"3000"`
}

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/bookshelf.yaml"
)

// New loads the config from (in increasing priority) defaults, the YAML file
// named by CONFIG_FILE and the environment.
func New() (*Config, error) {
	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	envKeys := envToKoanfKeys()
	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		kk, ok := envKeys[key]
		if !ok || value == "" {
			return "", nil
		}
		return kk, value
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config pointing at an in-memory SQLite database.
func NewForTest() *Config {
	cfg := &Config{
		DatabaseDriver: DriverSQLite,
		DatabaseName:   ":memory:",
		ServerHost:     "127.0.0.1",
	}
	_ = defaults.Set(cfg)
	return cfg
}

func (cfg *Config) validate() error {
	v := validator.New()
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.WithStack(err)
	}

	missing := []string{}
	for _, fe := range verrs {
		field, _ := reflect.TypeOf(*cfg).FieldByName(fe.StructField())
		name := fmt.Sprintf("%s (%s)", field.Tag.Get("env"), field.Tag.Get("koanf"))
		switch fe.Tag() {
		case "required", "required_unless":
			missing = append(missing, name)
		case "oneof":
			return errors.Errorf("invalid config %s: must be one of %s", name, fe.Param())
		default:
			return errors.Errorf("invalid config %s", name)
		}
	}

	return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
}

// envToKoanfKeys maps each env tag in Config to its koanf key.
func envToKoanfKeys() map[string]string {
	keys := map[string]string{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if e := f.Tag.Get("env"); e != "" {
			keys[e] = f.Tag.Get("koanf")
		}
	}
	return keys
}
