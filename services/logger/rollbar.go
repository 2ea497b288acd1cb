package logsvc

import (
	"fmt"
	"sort"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
)

// RollbarLogger writes structured logs with zap and reports them to Rollbar when a token is configured.
type RollbarLogger struct {
	zl      *zap.SugaredLogger
	enabled bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	l := &RollbarLogger{zl: zl.Sugar()}
	l.Enable(conf.RollbarToken != "" && !conf.TestMode)
	return l
}

// NewZapLogger returns the zap logger matching the environment: human-friendly when debugging, JSON otherwise.
func NewZapLogger(conf *core.Config) (*zap.Logger, error) {
	if conf.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (l *RollbarLogger) Enable(enabled bool) {
	l.enabled = enabled
	rollbar.SetEnabled(enabled)
}

// prepare splits `args` into Rollbar arguments and zap key-value pairs.
// expected fmt: error, map[string]interface{}, account.Account
func (l *RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, []interface{}) {
	var accSet bool
	rbArgs := make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	kvs := make([]interface{}, 0, 2*len(args))

	for i, arg := range args {
		switch arg := arg.(type) {
		case account.Account:
			if !accSet { // only set one Account
				if l.enabled {
					rollbar.SetPerson(arg.ID, arg.FullName, arg.Email)
				}
				kvs = append(kvs, "account_id", arg.ID)
				accSet = true
			}
		case error:
			rbArgs = append(rbArgs, arg)
			kvs = append(kvs, "error", fmt.Sprintf("%+v", arg))
		case map[string]interface{}:
			rbArgs = append(rbArgs, arg)
			keys := make([]string, 0, len(arg))
			for k := range arg {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				kvs = append(kvs, k, arg[k])
			}
		default:
			rbArgs = append(rbArgs, arg)
			kvs = append(kvs, fmt.Sprintf("arg%d", i), arg)
		}
	}
	if !accSet && l.enabled {
		rollbar.ClearPerson()
	}
	return rbArgs, kvs
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, kvs := l.prepare(msg, args)
	if l.enabled {
		rollbar.Debug(rbArgs...)
	}
	l.zl.Debugw(msg, kvs...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, kvs := l.prepare(msg, args)
	if l.enabled {
		rollbar.Info(rbArgs...)
	}
	l.zl.Infow(msg, kvs...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, kvs := l.prepare(msg, args)
	if l.enabled {
		rollbar.Warning(rbArgs...)
	}
	l.zl.Warnw(msg, kvs...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, kvs := l.prepare(msg, args)
	if l.enabled {
		rollbar.Error(rbArgs...)
	}
	l.zl.Errorw(msg, kvs...)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, kvs := l.prepare(msg, args)
	if l.enabled {
		rollbar.Critical(rbArgs...)
		rollbar.Wait()
	}
	l.zl.Fatalw(msg, kvs...)
}

// Close flushes the pending logs.
func (l *RollbarLogger) Close() {
	_ = l.zl.Sync()
	if l.enabled {
		rollbar.Close()
	}
}
