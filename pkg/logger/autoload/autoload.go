// Package autoload initializes the global logger from LOG_* environment
// variables on blank import.
package autoload

import (
	configx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/pkg/config"
	logx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/pkg/logger"
)

func init() {
	conf, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*conf)
}
