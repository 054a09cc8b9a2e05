package env

import (
	"fmt"

	"github.com/spf13/viper"
)

// GetString returns the string value of the given environment variable
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns the int value of the given environment variable
func GetInt(key string) int {
	return viper.GetInt(key)
}

// MustGetString returns the string value of the given environment variable,
// panicking if it is unset or empty
func MustGetString(key string) string {
	v := viper.GetString(key)
	if v == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return v
}
