// Package util provides the shared configuration plumbing of the CLI:
// flag registration, environment loading and translation into a
// conn.Config.
package util

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfellner/rosapi/conn"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupDeviceFlags adds the device connection flags to a command
func SetupDeviceFlags(cmd *cobra.Command) {
	key := "address"
	cmd.PersistentFlags().String(key, "192.168.88.1:8728", WrapString("The address of the device's API endpoint (host:port)"))

	key = "username"
	cmd.PersistentFlags().String(key, "admin", WrapString("The username to authenticate with"))

	key = "password"
	cmd.PersistentFlags().String(key, "", WrapString("The password to authenticate with (prefer ROSAPI_PASSWORD over the flag)"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("Dial and write timeout in seconds (0 disables deadlines)"))

	key = "queue-size"
	cmd.PersistentFlags().Int(key, 16, WrapString("Size of the command submission queue"))

	key = "stream-buffer"
	cmd.PersistentFlags().Int(key, 64, WrapString("Per-command response buffer - responses beyond it are discarded for that command only"))

	key = "tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY on the device socket"))

	key = "tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("TCP keepalive interval in seconds (0 disables)"))

	key = "tcp-linger"
	cmd.PersistentFlags().Int(key, -1, WrapString("TCP linger time in seconds (-1 leaves the OS default)"))

	key = "read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("Socket read buffer size in bytes (0 leaves the OS default)"))

	key = "write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("Socket write buffer size in bytes (0 leaves the OS default)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("Log level (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("rosapi")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// SetupLogging configures the global zerolog output and level from the
// bound flags.
func SetupLogging() {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// GetDeviceConfig reads the device configuration from viper
func GetDeviceConfig() conn.Config {
	cfg := conn.DefaultConfig()
	cfg.Address = viper.GetString("address")
	cfg.Username = viper.GetString("username")
	cfg.Password = viper.GetString("password")
	cfg.TimeoutSecond = viper.GetInt("timeout")
	cfg.QueueSize = viper.GetInt("queue-size")
	cfg.StreamBuffer = viper.GetInt("stream-buffer")
	cfg.TCPNoDelay = viper.GetBool("tcp-nodelay")
	cfg.TCPKeepAliveSec = viper.GetInt("tcp-keepalive")
	cfg.TCPLingerSec = viper.GetInt("tcp-linger")
	cfg.ReadBufferSize = viper.GetInt("read-buffer")
	cfg.WriteBufferSize = viper.GetInt("write-buffer")
	return cfg
}
