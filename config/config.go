package config

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/viper"
)

type Config struct {
	App       App       `yaml:"app"`
	Server    Server    `yaml:"server"`
	Queue     *RabbitMQ `yaml:"rabbitmq"`
	FTP       *FTP      `yaml:"ftp"`
	Transcode Transcode `yaml:"transcode"`
	DB        *sql.DB   `yaml:"-"`
}

type App struct {
	Environment   string `yaml:"environment"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type Server struct {
	HttpPort string `yaml:"http_port"`
}

type RabbitMQ struct {
	Host                 string        `yaml:"host"`
	Port                 int           `yaml:"port"`
	User                 string        `yaml:"user"`
	Pass                 string        `yaml:"pass"`
	Queue                string        `yaml:"queue"`
	ReconnectDelay       time.Duration `yaml:"reconnect_delay"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
}

type FTP struct {
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	User    string        `yaml:"user"`
	Pass    string        `yaml:"pass"`
	Root    string        `yaml:"root"`
	Timeout time.Duration `yaml:"timeout"`
}

type Transcode struct {
	FFmpegPath string        `yaml:"ffmpeg_path"`
	Timeout    time.Duration `yaml:"timeout"`
	StagingDir string        `yaml:"staging_dir"`
}

func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Env-only deployments carry no config file.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var db *sql.DB
	if dsn := viper.GetString("postgres.dsn"); dsn != "" {
		var err error
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
	}

	return &Config{
		App: App{
			Environment:   viper.GetString("app.environment"),
			PublicBaseURL: viper.GetString("app.public_base_url"),
		},
		Server: Server{
			HttpPort: viper.GetString("server.http_port"),
		},
		Queue: &RabbitMQ{
			Host:                 viper.GetString("rabbitmq.host"),
			Port:                 viper.GetInt("rabbitmq.port"),
			User:                 viper.GetString("rabbitmq.user"),
			Pass:                 viper.GetString("rabbitmq.pass"),
			Queue:                viper.GetString("rabbitmq.queue"),
			ReconnectDelay:       viper.GetDuration("rabbitmq.reconnect_delay"),
			MaxReconnectAttempts: viper.GetInt("rabbitmq.max_reconnect_attempts"),
		},
		FTP: &FTP{
			Host:    viper.GetString("ftp.host"),
			Port:    viper.GetInt("ftp.port"),
			User:    viper.GetString("ftp.user"),
			Pass:    viper.GetString("ftp.pass"),
			Root:    viper.GetString("ftp.root"),
			Timeout: viper.GetDuration("ftp.timeout"),
		},
		Transcode: Transcode{
			FFmpegPath: viper.GetString("transcode.ffmpeg_path"),
			Timeout:    viper.GetDuration("transcode.timeout"),
			StagingDir: viper.GetString("transcode.staging_dir"),
		},
		DB: db,
	}, nil
}

func setDefaults() {
	viper.SetDefault("app.environment", "develop")
	viper.SetDefault("app.public_base_url", "ftp://ftp-server/media/movies")
	viper.SetDefault("server.http_port", "8080")
	viper.SetDefault("rabbitmq.host", "rabbitmq")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.pass", "guest")
	viper.SetDefault("rabbitmq.queue", "transcode_queue")
	viper.SetDefault("rabbitmq.reconnect_delay", 10*time.Second)
	viper.SetDefault("rabbitmq.max_reconnect_attempts", 0)
	viper.SetDefault("ftp.host", "ftp-server")
	viper.SetDefault("ftp.port", 21)
	viper.SetDefault("ftp.user", "default_user")
	viper.SetDefault("ftp.pass", "default_pass")
	viper.SetDefault("ftp.root", "/media")
	viper.SetDefault("ftp.timeout", 30*time.Second)
	viper.SetDefault("transcode.ffmpeg_path", "ffmpeg")
	viper.SetDefault("transcode.timeout", 2*time.Hour)
	viper.SetDefault("transcode.staging_dir", "")
	viper.SetDefault("postgres.dsn", "")
}
