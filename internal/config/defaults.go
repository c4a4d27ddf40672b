package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8001")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.lock_retry_delay", time.Second)

	v.SetDefault("interview.default_role", "Senior Data Analyst")
	v.SetDefault("interview.default_level", "Intermediate")
	v.SetDefault("interview.auto_submit_delay", 2*time.Second)

	v.SetDefault("speech.enabled", true)
	v.SetDefault("speech.ffmpeg.command", "ffmpeg")
	v.SetDefault("speech.ffmpeg.input_format", "pulse")
	v.SetDefault("speech.ffmpeg.input_device", "default")
	v.SetDefault("speech.deepgram.api_key", "")
	v.SetDefault("speech.deepgram.base_url", "https://api.deepgram.com/v1")
	v.SetDefault("speech.deepgram.model", "nova-2")
	v.SetDefault("speech.deepgram.language", "en-US")

	v.SetDefault("playback.enabled", true)
	v.SetDefault("playback.player", "ffplay")
	v.SetDefault("playback.args", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"})

	v.SetDefault("history.backend", "sqlite")
	v.SetDefault("history.db_path", "")

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")

	v.SetDefault("user.id", "")
	v.SetDefault("user.email", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("server.addr", ":8001")
	v.SetDefault("server.questions_per_interview", 7)
	v.SetDefault("server.final_score", 88)
	v.SetDefault("server.audio_dir", "")
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests_per_min", 120)
	v.SetDefault("server.rate_limit.burst", 20)
	v.SetDefault("server.circuit_breaker.max_requests", 3)
	v.SetDefault("server.circuit_breaker.interval", 60*time.Second)
	v.SetDefault("server.circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("server.circuit_breaker.min_requests", 3)
	v.SetDefault("server.circuit_breaker.failure_threshold", 0.6)

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", "claude-haiku")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-flash")
	v.SetDefault("llm.retry.max_attempts", 3)
	v.SetDefault("llm.retry.initial_wait", time.Second)
	v.SetDefault("llm.retry.max_wait", 10*time.Second)
	v.SetDefault("llm.retry.multiplier", 2.0)
}
