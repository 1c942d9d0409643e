package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env    string `yaml:"env" env-default:"local"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9200"`
	} `yaml:"listen"`
	Database struct {
		Host     string `yaml:"host" env:"DB_HOST" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
		User     string `yaml:"user" env:"DB_USER" env-default:"chatcrm"`
		Password string `yaml:"password" env:"DB_PASSWORD" env-default:""`
		Name     string `yaml:"name" env:"DB_NAME" env-default:"chatcrm"`
		SSLMode  string `yaml:"ssl_mode" env-default:"disable"`
	} `yaml:"database"`
	Chat struct {
		SupportClaimHours int      `yaml:"support_claim_hours" env-default:"8"`
		RetentionDays     int      `yaml:"retention_days" env-default:"30"`
		RetentionKeep     int      `yaml:"retention_keep" env-default:"50"`
		MaxFileSizeMB     int64    `yaml:"max_file_size_mb" env-default:"10"`
		AllowedImageTypes []string `yaml:"allowed_image_types" env-default:"image/jpeg,image/png,image/gif,image/webp"`
	} `yaml:"chat"`
	Media struct {
		Dir        string `yaml:"dir" env-default:"/var/lib/chatcrm/media"`
		URLSecret  string `yaml:"url_secret" env:"MEDIA_URL_SECRET" env-default:""`
		URLTTLMins int    `yaml:"url_ttl_minutes" env-default:"60"`
	} `yaml:"media"`
}

// SupportClaimWindow returns the expiry window of a support-room claim.
func (c *Config) SupportClaimWindow() time.Duration {
	return time.Duration(c.Chat.SupportClaimHours) * time.Hour
}

// MaxFileSize returns the upload limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return c.Chat.MaxFileSizeMB << 20
}

// MediaURLTTL returns how long a signed download URL stays valid.
func (c *Config) MediaURLTTL() time.Duration {
	return time.Duration(c.Media.URLTTLMins) * time.Minute
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
