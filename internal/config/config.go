package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port     string
		LogLevel string
	}
	Voice struct {
		Lang            string
		SilenceWindowMS int
		Rate            float64
		Pitch           float64
		RestartDelayMS  int
		SettleDelayMS   int
	}
	Interpreter struct {
		APIKey    string
		Model     string
		TimeoutMS int
	}
	Data struct {
		Dir string
	}
	Worker struct {
		TokenSecret   string
		TokenSkewSecs int
		TokenExpMin   int
	}
}

func Load() Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("voice.lang", "en-US")
	v.SetDefault("voice.silence_window_ms", 4000)
	v.SetDefault("voice.rate", 0.9)
	v.SetDefault("voice.pitch", 0.8)
	v.SetDefault("voice.restart_delay_ms", 50)
	v.SetDefault("voice.settle_delay_ms", 100)

	v.SetDefault("interpreter.model", "gpt-5-nano")
	v.SetDefault("interpreter.timeout_ms", 15000)

	v.SetDefault("worker.token_skew_secs", 60)
	v.SetDefault("worker.token_exp_min", 720)

	// Map envs
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.log_level", "LOG_LEVEL")

	v.BindEnv("voice.lang", "LEX_LANG")
	v.BindEnv("voice.silence_window_ms", "LEX_SILENCE_WINDOW_MS")
	v.BindEnv("voice.rate", "LEX_TTS_RATE")
	v.BindEnv("voice.pitch", "LEX_TTS_PITCH")
	v.BindEnv("voice.restart_delay_ms", "LEX_RESTART_DELAY_MS")
	v.BindEnv("voice.settle_delay_ms", "LEX_SETTLE_DELAY_MS")

	v.BindEnv("interpreter.api_key", "OPENAI_API_KEY")
	v.BindEnv("interpreter.model", "LEX_INTERPRETER_MODEL")
	v.BindEnv("interpreter.timeout_ms", "LEX_INTERPRETER_TIMEOUT_MS")

	v.BindEnv("data.dir", "LEX_DATA_DIR")

	v.BindEnv("worker.token_secret", "LEX_WORKER_TOKEN_SECRET")
	v.BindEnv("worker.token_skew_secs", "LEX_WORKER_TOKEN_SKEW_SECS")
	v.BindEnv("worker.token_exp_min", "LEX_WORKER_TOKEN_EXP_MIN")

	var c Config
	c.Server.Port = toString(v.Get("server.port"))
	c.Server.LogLevel = v.GetString("server.log_level")

	c.Voice.Lang = v.GetString("voice.lang")
	c.Voice.SilenceWindowMS = v.GetInt("voice.silence_window_ms")
	c.Voice.Rate = v.GetFloat64("voice.rate")
	c.Voice.Pitch = v.GetFloat64("voice.pitch")
	c.Voice.RestartDelayMS = v.GetInt("voice.restart_delay_ms")
	c.Voice.SettleDelayMS = v.GetInt("voice.settle_delay_ms")

	c.Interpreter.APIKey = v.GetString("interpreter.api_key")
	c.Interpreter.Model = v.GetString("interpreter.model")
	c.Interpreter.TimeoutMS = v.GetInt("interpreter.timeout_ms")

	c.Data.Dir = v.GetString("data.dir")

	c.Worker.TokenSecret = v.GetString("worker.token_secret")
	c.Worker.TokenSkewSecs = v.GetInt("worker.token_skew_secs")
	c.Worker.TokenExpMin = v.GetInt("worker.token_exp_min")

	log.Printf("config loaded: port=%s lang=%s silence_window_ms=%d", c.Server.Port, c.Voice.Lang, c.Voice.SilenceWindowMS)
	return c
}

func toString(v any) string { return fmt.Sprint(v) }
