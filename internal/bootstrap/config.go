package bootstrap

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

const (
	BackendFS    = "fs"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

type Config struct {
	ServerPort      string `mapstructure:"SERVER_PORT"`
	StorageBackend  string `mapstructure:"STORAGE_BACKEND"`
	SaveDir         string `mapstructure:"SAVE_DIR"`
	SaveExt         string `mapstructure:"SAVE_EXT"`
	RedisUrl        string `mapstructure:"REDIS_URL"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisPrefix     string `mapstructure:"REDIS_PREFIX"`
	MongoUri        string `mapstructure:"MONGO_URI"`
	MongoDatabase   string `mapstructure:"MONGO_DATABASE"`
	MongoCollection string `mapstructure:"MONGO_COLLECTION"`
	SaveVersion     uint32 `mapstructure:"SAVE_VERSION"`
	StagedLoad      bool   `mapstructure:"STAGED_LOAD"`
	SceneIDs        []int  `mapstructure:"SCENE_IDS"`
	LogDebug        bool   `mapstructure:"LOG_DEBUG"`
	IsLocalCors     bool   `mapstructure:"LOCAL_CORS"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("STORAGE_BACKEND", BackendFS)
	v.SetDefault("SAVE_DIR", "saves")
	v.SetDefault("SAVE_EXT", ".sav")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_PREFIX", "gamesave")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "gamesave")
	v.SetDefault("MONGO_COLLECTION", "saves")
	v.SetDefault("SAVE_VERSION", 48)
	v.SetDefault("STAGED_LOAD", true)
	v.SetDefault("SCENE_IDS", []int{})
	v.SetDefault("LOG_DEBUG", false)
	v.SetDefault("LOCAL_CORS", false)
}

// Setup reads cfgPath if it exists; environment variables override both
// the file and the defaults.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SceneIDs32 returns SceneIDs as engine scene ids.
func (c *Config) SceneIDs32() []int32 {
	out := make([]int32, 0, len(c.SceneIDs))
	for _, id := range c.SceneIDs {
		out = append(out, int32(id))
	}
	return out
}
