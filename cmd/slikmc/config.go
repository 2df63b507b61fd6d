package main

import (
	"fmt"

	"github.com/loopkin/slikmc/prior"
	"github.com/pelletier/go-toml"
)

//settings merges the command line flags with a TOML configuration file. Flags that were
//explicitly given take precedence over the file, and the file over the flag defaults.
type settings struct {
	tree *toml.Tree
	set  map[string]bool
}

func newSettings(configfile string, set map[string]bool) (*settings, error) {
	s := &settings{set: set}
	if configfile == "" {
		return s, nil
	}
	var err error
	s.tree, err = toml.LoadFile(configfile)
	if err != nil {
		return nil, fmt.Errorf("Can't read configuration file %s: %w", configfile, err)
	}
	return s, nil
}

//value returns the value of key in the configuration file, if the flag was not given.
func (s *settings) value(flagname, key string) (interface{}, bool) {
	if s.set[flagname] || s.tree == nil || !s.tree.Has(key) {
		return nil, false
	}
	return s.tree.Get(key), true
}

//Given returns true if the flag was set explicitly, or the key is present in the configuration file.
func (s *settings) Given(flagname, key string) bool {
	return s.set[flagname] || (s.tree != nil && s.tree.Has(key))
}

func (s *settings) Bool(flagname, key string, dst *bool) {
	v, ok := s.value(flagname, key)
	if !ok {
		return
	}
	b, ok := v.(bool)
	if !ok {
		LogV(0, "Ignoring non-boolean value for", key)
		return
	}
	*dst = b
}

func (s *settings) Float(flagname, key string, dst *float64) {
	v, ok := s.value(flagname, key)
	if !ok {
		return
	}
	switch f := v.(type) {
	case float64:
		*dst = f
	case int64:
		*dst = float64(f)
	default:
		LogV(0, "Ignoring non-numeric value for", key)
	}
}

func (s *settings) Int(flagname, key string, dst *int) {
	v, ok := s.value(flagname, key)
	if !ok {
		return
	}
	i, ok := v.(int64)
	if !ok {
		LogV(0, "Ignoring non-integer value for", key)
		return
	}
	*dst = int(i)
}

func (s *settings) String(flagname, key string, dst *string) {
	v, ok := s.value(flagname, key)
	if !ok {
		return
	}
	str, ok := v.(string)
	if !ok {
		LogV(0, "Ignoring non-string value for", key)
		return
	}
	*dst = str
}

//restraint is one [[restraint]] table of the configuration file.
type restraint struct {
	Res1      int     `toml:"res1"`
	Name1     string  `toml:"name1"`
	Res2      int     `toml:"res2"`
	Name2     string  `toml:"name2"`
	Target    float64 `toml:"target"`
	Tolerance float64 `toml:"tolerance"`
	K         float64 `toml:"k"`
}

//Restraints returns the distance restraints in the configuration file.
func (s *settings) Restraints() ([]prior.Custom, error) {
	if s.tree == nil || !s.tree.Has("restraint") {
		return nil, nil
	}
	trees, ok := s.tree.Get("restraint").([]*toml.Tree)
	if !ok {
		return nil, fmt.Errorf("restraint must be an array of tables")
	}
	ret := make([]prior.Custom, 0, len(trees))
	for i, t := range trees {
		var r restraint
		if err := t.Unmarshal(&r); err != nil {
			return nil, fmt.Errorf("restraint %d: %w", i, err)
		}
		if !t.Has("k") {
			r.K = 10
		}
		if r.K <= 0 || r.Tolerance < 0 {
			return nil, fmt.Errorf("restraint %d: the constant must be positive and the tolerance not negative", i)
		}
		ret = append(ret, &prior.DistanceRestraint{Res1: r.Res1, Res2: r.Res2, Name1: r.Name1, Name2: r.Name2, Target: r.Target, Tolerance: r.Tolerance, K: r.K})
	}
	return ret, nil
}
