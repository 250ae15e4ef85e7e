package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	Addr            string `envconfig:"OTL_ADDR" default:"127.0.0.1:8080"`
	DBPath          string `envconfig:"OTL_DB_PATH" default:"otl.db"`
	DataDir         string `envconfig:"OTL_DATA_DIR" default:"data"`
	CredentialsPath string `envconfig:"OTL_CREDENTIALS_PATH" default:"MAL_KEY.env"`
	LogPath         string `envconfig:"OTL_LOG_PATH"`
	// MALUser seeds the settings row on first run; afterwards the value in
	// sqlite wins.
	MALUser string `envconfig:"OTL_MAL_USER"`
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
