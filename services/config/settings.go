// Package config resolves process settings and the board profile.
//
// Settings come from built-in defaults overridden by TS7680CTL_* environment
// variables. The board profile is YAML, embedded per board and optionally
// replaced by a file named in the settings.
package config

import (
	"fmt"
	"time"

	"github.com/warthog618/config"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"

	"ts7680ctl/errcode"
)

const EnvPrefix = "TS7680CTL_"

// Setting keys.
const (
	KeyDevMem      = "devmem"
	KeyI2CBus      = "i2c.bus"
	KeyGPIORoot    = "gpio.root"
	KeyModelFile   = "model.file"
	KeyPollTimeout = "poll.timeout"
	KeyProfile     = "profile"
	KeyProfileFile = "profile.file"
)

var defaults = map[string]interface{}{
	KeyDevMem:      "/dev/mem",
	KeyI2CBus:      "/dev/i2c-0",
	KeyGPIORoot:    "/sys/class/gpio",
	KeyModelFile:   "/proc/device-tree/model",
	KeyPollTimeout: "0s",
	KeyProfile:     "ts7680",
	KeyProfileFile: "",
}

type Settings struct {
	DevMem    string
	I2CBus    string
	GPIORoot  string
	ModelFile string

	// PollTimeout bounds every hardware busy-poll. Zero waits forever.
	PollTimeout time.Duration

	Profile     string
	ProfileFile string
}

// Load resolves Settings from the defaults and the environment.
func Load() (Settings, error) {
	cfg := config.New(
		env.New(env.WithEnvPrefix(EnvPrefix)),
		config.WithDefault(dict.New(dict.WithMap(defaults))))
	return fromConfig(cfg)
}

func fromConfig(cfg *config.Config) (s Settings, err error) {
	str := func(k string) string {
		if err != nil {
			return ""
		}
		v, e := cfg.Get(k)
		if e != nil {
			err = &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: k, Err: e}
			return ""
		}
		return v.String()
	}
	s.DevMem = str(KeyDevMem)
	s.I2CBus = str(KeyI2CBus)
	s.GPIORoot = str(KeyGPIORoot)
	s.ModelFile = str(KeyModelFile)
	s.Profile = str(KeyProfile)
	s.ProfileFile = str(KeyProfileFile)
	pt := str(KeyPollTimeout)
	if err != nil {
		return s, err
	}
	if s.PollTimeout, err = time.ParseDuration(pt); err != nil || s.PollTimeout < 0 {
		return s, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: fmt.Sprintf("%s=%q", KeyPollTimeout, pt), Err: err}
	}
	return s, nil
}
