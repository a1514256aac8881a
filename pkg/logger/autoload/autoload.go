// Package autoload configures the global zerolog logger from LOG_* variables
// when imported for side effects.
package autoload

import (
	configx "github.com/rayadhanush/Dining-concierge-bot/pkg/config"
	logx "github.com/rayadhanush/Dining-concierge-bot/pkg/logger"
)

func init() {
	conf, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*conf)
}
