package cmd

import (
	"github.com/achilleasa/wbvh/config"
	"github.com/achilleasa/wbvh/log"
	"github.com/urfave/cli"
)

var logger = log.New("wbvh")

// Apply the profile log level; the verbosity flags take precedence.
func setupLogging(ctx *cli.Context, profile *config.Profile) {
	if level, err := log.ParseLevel(profile.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// Load the build profile specified by the global config flag or fall back
// to the default profile.
func loadProfile(ctx *cli.Context) (*config.Profile, error) {
	profileFile := ctx.GlobalString("config")
	if profileFile == "" {
		return config.Default(), nil
	}

	return config.Load(profileFile)
}
