package config

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"ts7680ctl/errcode"
)

//go:embed profiles/*.yaml
var embeddedProfiles embed.FS

// EmbeddedProfileLookup allows overriding how built-in profiles are resolved.
var EmbeddedProfileLookup = func(name string) ([]byte, bool) {
	b, err := embeddedProfiles.ReadFile("profiles/" + name + ".yaml")
	return b, err == nil
}

type Profile struct {
	Name         string    `yaml:"name"`
	Model        uint32    `yaml:"model"`
	FPGA         FPGA      `yaml:"fpga"`
	BootmodeGPIO int       `yaml:"bootmode_gpio"`
	DAC          []DACPair `yaml:"dac"`
	Crossbar     Crossbar  `yaml:"crossbar"`
}

type FPGA struct {
	Address     uint16 `yaml:"address"`
	RevisionReg uint16 `yaml:"revision_reg"`
}

type DACPair struct {
	Hi uint16 `yaml:"hi"`
	Lo uint16 `yaml:"lo"`
}

type Crossbar struct {
	Size    uint8 `yaml:"size"`
	Mask    uint8 `yaml:"mask"`
	Inputs  []Pin `yaml:"inputs"`
	Outputs []Pin `yaml:"outputs"`
}

type Pin struct {
	Name string `yaml:"name"`
	Addr uint16 `yaml:"addr"`
}

// LoadProfile returns the profile named by s, read from s.ProfileFile when
// set and from the built-in set otherwise.
func LoadProfile(s Settings) (*Profile, error) {
	var (
		raw []byte
		src string
	)
	if s.ProfileFile != "" {
		b, err := os.ReadFile(s.ProfileFile)
		if err != nil {
			return nil, &errcode.E{C: errcode.IO, Op: "profile", Err: err}
		}
		raw, src = b, s.ProfileFile
	} else {
		b, ok := EmbeddedProfileLookup(s.Profile)
		if !ok || len(b) == 0 {
			return nil, &errcode.E{C: errcode.Unsupported, Op: "profile", Msg: "no built-in profile " + s.Profile}
		}
		raw, src = b, s.Profile
	}
	return ParseProfile(raw, src)
}

// ParseProfile decodes and validates a YAML profile. src names the origin
// in error messages.
func ParseProfile(raw []byte, src string) (*Profile, error) {
	var p Profile
	if err := yaml.UnmarshalStrict(raw, &p); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "profile " + src, Err: err}
	}
	if err := p.validate(); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "profile " + src, Msg: err.Error()}
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if p.Model == 0 {
		return fmt.Errorf("model missing")
	}
	cb := p.Crossbar
	if cb.Size == 0 || cb.Size > 8 {
		return fmt.Errorf("crossbar size %d out of range", cb.Size)
	}
	if uint(cb.Mask) >= 1<<(8-cb.Size) {
		return fmt.Errorf("crossbar mask 0x%x overlaps selector bits", cb.Mask)
	}
	for _, in := range cb.Inputs {
		if uint(in.Addr) >= 1<<cb.Size {
			return fmt.Errorf("crossbar input %s selector 0x%x too wide", in.Name, in.Addr)
		}
	}
	return nil
}
