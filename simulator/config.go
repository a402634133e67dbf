package simulator

import (
	"os"
	"strconv"
)

type Config struct {
	HttpPort  string
	ServerKey string

	// where signed settlement notifications are posted back
	CallbackURL   string
	SettleDelayMS int
}

func ConfigFromEnv() *Config {
	settleDelay, _ := strconv.Atoi(os.Getenv("GATEWAY_SIMULATOR_SETTLE_DELAY_MS"))
	if settleDelay == 0 {
		settleDelay = 2000
	}
	return &Config{
		HttpPort:      os.Getenv("GATEWAY_SIMULATOR_HTTP_PORT"),
		ServerKey:     os.Getenv("GATEWAY_SIMULATOR_SERVER_KEY"),
		CallbackURL:   os.Getenv("GATEWAY_SIMULATOR_CALLBACK_URL"),
		SettleDelayMS: settleDelay,
	}
}
